package config

import (
	"fmt"
	"time"
)

// 回退延迟边界
const (
	// DefaultFallbackDelay 默认回退延迟（RFC 6555 建议 150-250ms，沿用 300ms）
	DefaultFallbackDelay = 300 * time.Millisecond

	// MaxFallbackDelay 回退延迟上限
	MaxFallbackDelay = 10 * time.Second
)

// RaceConfig 连接竞速配置
type RaceConfig struct {
	// FallbackDelay 非最后一个候选的有界等待时长
	//
	// 超时后保留已发起的尝试，继续发起下一个候选。
	FallbackDelay Duration `json:"fallback_delay"`

	// Reorder 是否将首个 IPv4 候选移到首个 IPv6 候选之后
	Reorder bool `json:"reorder"`
}

// DefaultRaceConfig 返回默认竞速配置
func DefaultRaceConfig() RaceConfig {
	return RaceConfig{
		FallbackDelay: Duration(DefaultFallbackDelay),
		Reorder:       true,
	}
}

// Validate 验证竞速配置
func (c RaceConfig) Validate() error {
	d := c.FallbackDelay.Duration()
	if d <= 0 {
		return fmt.Errorf("%w: fallback_delay must be positive, got %s", ErrInvalidConfig, d)
	}
	if d > MaxFallbackDelay {
		return fmt.Errorf("%w: fallback_delay %s exceeds %s", ErrInvalidConfig, d, MaxFallbackDelay)
	}
	return nil
}
