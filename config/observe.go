package config

import (
	"fmt"

	"github.com/dep2p/go-happyeyeballs/pkg/lib/log"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别：debug、info、warn、error
	Level string `json:"level"`

	// Format 日志格式：text、json
	Format string `json:"format"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	if _, ok := log.ParseLevel(c.Level); !ok {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Level)
	}
	if _, ok := log.ParseFormat(c.Format); !ok {
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Format)
	}
	return nil
}

// Options 转换为日志初始化选项
//
// 调用前应已通过 Validate。
func (c LogConfig) Options() log.Options {
	level, _ := log.ParseLevel(c.Level)
	format, _ := log.ParseFormat(c.Format)
	return log.Options{Level: level, Format: format}
}

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	// Enable 是否记录竞速指标
	Enable bool `json:"enable"`

	// Namespace 指标命名空间
	Namespace string `json:"namespace"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enable:    false,
		Namespace: "eyeballs",
	}
}

// Validate 验证指标配置
func (c MetricsConfig) Validate() error {
	if c.Enable && c.Namespace == "" {
		return fmt.Errorf("%w: metrics namespace required when metrics are enabled", ErrInvalidConfig)
	}
	return nil
}
