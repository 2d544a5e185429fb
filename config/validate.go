package config

import "errors"

// ErrInvalidConfig 无效配置
var ErrInvalidConfig = errors.New("invalid config")

// MustValidate 验证配置，失败时 panic
//
// 仅用于测试或初始化阶段。
func MustValidate(c *Config) {
	if err := c.Validate(); err != nil {
		panic(err)
	}
}
