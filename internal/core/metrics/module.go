package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-happyeyeballs/config"
	"github.com/dep2p/go-happyeyeballs/internal/core/eyeballs"
)

// ConfigFromUnified 从统一配置获取指标配置
func ConfigFromUnified(cfg *config.Config) config.MetricsConfig {
	if cfg == nil {
		return config.DefaultMetricsConfig()
	}
	return cfg.Metrics
}

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Registerer prometheus.Registerer
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(
		fx.Annotate(
			prometheus.NewRegistry,
			fx.As(fx.Self()),
			fx.As(new(prometheus.Registerer)),
			fx.As(new(prometheus.Gatherer)),
		),
		NewReporterFromParams,
	),
)

// NewReporterFromParams 从参数创建竞速 Reporter
//
// 指标未启用时返回 nil，Dialer 回退到空实现。
func NewReporterFromParams(p Params) (eyeballs.Reporter, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if !cfg.Enable {
		return nil, nil
	}
	m, err := NewRaceMetrics(p.Registerer, cfg.Namespace)
	if err != nil {
		return nil, err
	}
	return m, nil
}
