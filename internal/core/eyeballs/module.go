//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package eyeballs

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-happyeyeballs/config"
)

// Module eyeballs Fx 模块
var Module = fx.Module("eyeballs",
	fx.Provide(
		provideDialer,
	),
)

// DialerParams Dialer 依赖参数
type DialerParams struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Reporter   Reporter       `optional:"true"`
	Clock      clock.Clock    `optional:"true"`
}

// ConfigFromUnified 从统一配置获取竞速配置
func ConfigFromUnified(cfg *config.Config) config.RaceConfig {
	if cfg == nil {
		return config.DefaultRaceConfig()
	}
	return cfg.Race
}

func provideDialer(params DialerParams) *Dialer {
	return NewDialer(ConfigFromUnified(params.UnifiedCfg),
		WithReporter(params.Reporter),
		WithClock(params.Clock),
	)
}
