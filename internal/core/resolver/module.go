package resolver

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-happyeyeballs/config"
)

// Module resolver Fx 模块
var Module = fx.Module("resolver",
	fx.Provide(
		provideResolver,
	),
)

// Params 解析器依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Lookuper   Lookuper       `optional:"true"`
}

// ConfigFromUnified 从统一配置获取解析配置
func ConfigFromUnified(cfg *config.Config) config.ResolverConfig {
	if cfg == nil {
		return config.DefaultResolverConfig()
	}
	return cfg.Resolver
}

func provideResolver(p Params) *Resolver {
	return New(ConfigFromUnified(p.UnifiedCfg), WithLookuper(p.Lookuper))
}
