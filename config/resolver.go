package config

import (
	"fmt"
	"net"
	"time"
)

// 支持的解析网络
const (
	NetworkDual = "ip"
	NetworkIPv4 = "ip4"
	NetworkIPv6 = "ip6"
)

// ResolverConfig 候选地址解析配置
type ResolverConfig struct {
	// Network 解析网络：ip（双栈）、ip4、ip6
	Network string `json:"network"`

	// Timeout 单次解析超时，0 表示不额外限制
	Timeout Duration `json:"timeout"`

	// Server 自定义 DNS 服务器地址
	// 格式: <ip>:<port>，例如 "8.8.8.8:53"；为空时使用系统解析器
	Server string `json:"server,omitempty"`
}

// DefaultResolverConfig 返回默认解析配置
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		Network: NetworkDual,
		Timeout: Duration(5 * time.Second),
	}
}

// Validate 验证解析配置
func (c ResolverConfig) Validate() error {
	switch c.Network {
	case NetworkDual, NetworkIPv4, NetworkIPv6:
	default:
		return fmt.Errorf("%w: unknown resolver network %q", ErrInvalidConfig, c.Network)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: resolver timeout must not be negative", ErrInvalidConfig)
	}
	if c.Server != "" {
		if _, _, err := net.SplitHostPort(c.Server); err != nil {
			return fmt.Errorf("%w: resolver server %q: %v", ErrInvalidConfig, c.Server, err)
		}
	}
	return nil
}
