package happyeyeballs

import (
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-happyeyeballs/config"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 基础配置（文件 / 环境变量加载结果）
	config *config.Config

	// 竞速配置
	fallbackDelay *time.Duration
	reorder       *bool

	// 解析配置
	network   string
	dnsServer string
	lookuper  Lookuper

	// 观测
	metrics  *bool
	reporter Reporter

	// 用户自定义 Fx 选项
	fxOptions []fx.Option
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{}
}

// toConfig 合成最终配置
//
// 不修改 WithConfig 传入的配置。
func (o *options) toConfig() *config.Config {
	cfg := config.NewConfig()
	if o.config != nil {
		c := *o.config
		cfg = &c
	}

	// 覆盖: 竞速配置
	if o.fallbackDelay != nil {
		cfg.Race.FallbackDelay = config.Duration(*o.fallbackDelay)
	}
	if o.reorder != nil {
		cfg.Race.Reorder = *o.reorder
	}

	// 覆盖: 解析配置
	if o.network != "" {
		cfg.Resolver.Network = o.network
	}
	if o.dnsServer != "" {
		cfg.Resolver.Server = o.dnsServer
	}

	// 覆盖: 指标
	if o.metrics != nil {
		cfg.Metrics.Enable = *o.metrics
	}

	return cfg
}

// ============================================================================
//                              配置选项
// ============================================================================

// WithConfig 使用完整配置作为基础
//
// 其它选项在此基础上覆盖，与选项顺序无关。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("配置不能为空")
		}
		o.config = cfg
		return nil
	}
}

// WithFallbackDelay 设置回退延迟
func WithFallbackDelay(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("回退延迟必须为正数: %s", d)
		}
		o.fallbackDelay = &d
		return nil
	}
}

// WithReorder 设置是否将首个 IPv4 候选提前到首个 IPv6 候选之后
func WithReorder(enable bool) Option {
	return func(o *options) error {
		o.reorder = &enable
		return nil
	}
}

// ============================================================================
//                              解析选项
// ============================================================================

// WithNetwork 限制解析的地址族：ip（双栈）、ip4、ip6
func WithNetwork(network string) Option {
	return func(o *options) error {
		switch network {
		case config.NetworkDual, config.NetworkIPv4, config.NetworkIPv6:
		default:
			return fmt.Errorf("未知的解析网络: %q", network)
		}
		o.network = network
		return nil
	}
}

// WithDNSServer 使用指定的 DNS 服务器（<ip>:<port>）
func WithDNSServer(addr string) Option {
	return func(o *options) error {
		o.dnsServer = addr
		return nil
	}
}

// WithLookuper 替换地址解析实现
func WithLookuper(l Lookuper) Option {
	return func(o *options) error {
		if l == nil {
			return fmt.Errorf("lookuper 不能为空")
		}
		o.lookuper = l
		return nil
	}
}

// ============================================================================
//                              观测选项
// ============================================================================

// WithMetrics 启用或关闭 Prometheus 竞速指标
func WithMetrics(enable bool) Option {
	return func(o *options) error {
		o.metrics = &enable
		return nil
	}
}

// WithReporter 使用自定义竞速观测实现
//
// 设置后优先于内置的 Prometheus 指标。
func WithReporter(r Reporter) Option {
	return func(o *options) error {
		if r == nil {
			return fmt.Errorf("reporter 不能为空")
		}
		o.reporter = r
		return nil
	}
}

// ============================================================================
//                              扩展选项
// ============================================================================

// WithFxOptions 追加用户自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.fxOptions = append(o.fxOptions, opts...)
		return nil
	}
}
