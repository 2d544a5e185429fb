//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package happyeyeballs

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-happyeyeballs/config"
	"github.com/dep2p/go-happyeyeballs/internal/core/eyeballs"
	"github.com/dep2p/go-happyeyeballs/internal/core/metrics"
	"github.com/dep2p/go-happyeyeballs/internal/core/resolver"
	"github.com/dep2p/go-happyeyeballs/pkg/lib/log"
)

var fxLogger = log.Logger("eyeballs/fx")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置注入
//  2. 指标（条件加载，自定义 Reporter 时跳过）
//  3. Resolver → Dialer
//  4. 用户扩展
//  5. Client 组件注入
func buildFxApp(cfg *config.Config, o *options, client *Client) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证（前置）
	// ════════════════════════════════════════════════════════════════════════
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(cfg),
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 观测（条件加载）
	// ════════════════════════════════════════════════════════════════════════
	switch {
	case o.reporter != nil:
		reporter := o.reporter
		modules = append(modules, fx.Provide(func() eyeballs.Reporter { return reporter }))
		fxLogger.Debug("使用自定义 Reporter")
	case cfg.Metrics.Enable:
		modules = append(modules, metrics.Module)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 核心模块
	// ════════════════════════════════════════════════════════════════════════
	if o.lookuper != nil {
		lookuper := o.lookuper
		modules = append(modules, fx.Provide(func() resolver.Lookuper { return lookuper }))
	}
	modules = append(modules,
		resolver.Module,
		eyeballs.Module,
	)

	// ════════════════════════════════════════════════════════════════════════
	// 4. 用户扩展（Fx Options）
	// ════════════════════════════════════════════════════════════════════════
	if len(o.fxOptions) > 0 {
		modules = append(modules, o.fxOptions...)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 5. Client 组件注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.Invoke(injectClientComponents(client)))

	// ════════════════════════════════════════════════════════════════════════
	// 6. Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.NopLogger,
	)

	return fx.New(modules...), nil
}

// clientInjectParams Client 组件注入参数
type clientInjectParams struct {
	fx.In

	// 核心组件（必需）
	Dialer   *eyeballs.Dialer
	Resolver *resolver.Resolver

	// 可选组件
	Gatherer prometheus.Gatherer `optional:"true"`
}

// injectClientComponents 创建 Client 组件注入函数
func injectClientComponents(c *Client) interface{} {
	return func(p clientInjectParams) {
		c.dialer = p.Dialer
		c.resolver = p.Resolver
		c.gatherer = p.Gatherer
	}
}
