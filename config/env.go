package config

import (
	"os"
	"strings"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "EYEBALLS_"

// 环境变量名（不含前缀）
const (
	EnvFallbackDelay  = "FALLBACK_DELAY"
	EnvNetwork        = "NETWORK"
	EnvResolveTimeout = "RESOLVE_TIMEOUT"
	EnvDNSServer      = "DNS_SERVER"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
	EnvMetrics        = "METRICS"
)

// ApplyEnv 应用环境变量覆盖配置
//
// 环境变量优先级高于配置文件，但低于命令行参数。
// 无法解析的值被忽略，保留原配置。
func ApplyEnv(cfg *Config) {
	if cfg == nil {
		return
	}

	if v := getenv(EnvFallbackDelay); v != "" {
		if d, err := ParseDuration(v); err == nil {
			cfg.Race.FallbackDelay = d
		}
	}

	if v := getenv(EnvNetwork); v != "" {
		cfg.Resolver.Network = strings.ToLower(v)
	}

	if v := getenv(EnvResolveTimeout); v != "" {
		if d, err := ParseDuration(v); err == nil {
			cfg.Resolver.Timeout = d
		}
	}

	if v := getenv(EnvDNSServer); v != "" {
		cfg.Resolver.Server = v
	}

	if v := getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}

	if v := getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}

	if v := getenv(EnvMetrics); v != "" {
		cfg.Metrics.Enable = ParseBool(v)
	}
}

func getenv(name string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + name))
}

// ParseBool 解析布尔值字符串
func ParseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
