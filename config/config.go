// Package config 提供统一的配置管理
//
// 本包采用与组件对应的分文件配置：
//   - Race: 连接竞速（回退延迟、候选重排）
//   - Resolver: 候选地址解析
//   - Log: 日志级别与格式
//   - Metrics: Prometheus 指标
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Race.FallbackDelay = config.Duration(250 * time.Millisecond)
//
//	// 从 JSON 文件加载（缺省字段保留默认值）
//	cfg, err := config.LoadFile("eyeballs.json")
//
//	// 应用环境变量覆盖
//	config.ApplyEnv(cfg)
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config 是 go-happyeyeballs 的完整配置结构
type Config struct {
	// Race 连接竞速配置
	Race RaceConfig `json:"race"`

	// Resolver 地址解析配置
	Resolver ResolverConfig `json:"resolver"`

	// Log 日志配置
	Log LogConfig `json:"log"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Race:     DefaultRaceConfig(),
		Resolver: DefaultResolverConfig(),
		Log:      DefaultLogConfig(),
		Metrics:  DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := c.Race.Validate(); err != nil {
		return err
	}
	if err := c.Resolver.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return c.Metrics.Validate()
}

// FromJSON 从 JSON 数据解析配置
//
// JSON 中未出现的字段保留默认值。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
	if err != nil {
		return nil, err
	}
	return FromJSON(data)
}
