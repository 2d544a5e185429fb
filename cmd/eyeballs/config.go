//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/dep2p/go-happyeyeballs/config"
)

// ============================================================================
//                              配置加载（CLI 专用）
// ============================================================================

// buildConfig 合成最终配置
//
// 配置优先级（从高到低）：
//  1. 命令行参数
//  2. 环境变量（EYEBALLS_* 前缀）
//  3. 配置文件
//  4. 默认值
func buildConfig(fs *flag.FlagSet, f *cliFlags) (*config.Config, error) {
	var cfg *config.Config

	// ═══════════════════════════════════════════════════════════════════
	// 1. 加载配置文件
	// ═══════════════════════════════════════════════════════════════════
	if f.configFile != "" {
		var err error
		cfg, err = config.LoadFile(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
	} else {
		cfg = config.NewConfig()
	}

	// ═══════════════════════════════════════════════════════════════════
	// 2. 应用环境变量覆盖
	// ═══════════════════════════════════════════════════════════════════
	config.ApplyEnv(cfg)

	// ═══════════════════════════════════════════════════════════════════
	// 3. 应用命令行参数覆盖
	// ═══════════════════════════════════════════════════════════════════
	if isFlagSet(fs, "delay") {
		cfg.Race.FallbackDelay = f.delay
	}
	if isFlagSet(fs, "no-reorder") {
		cfg.Race.Reorder = !f.noReorder
	}
	if isFlagSet(fs, "network") {
		cfg.Resolver.Network = f.network
	}
	if isFlagSet(fs, "dns") {
		cfg.Resolver.Server = f.dnsServer
	}
	if isFlagSet(fs, "log-level") {
		cfg.Log.Level = f.logLevel
	}
	if isFlagSet(fs, "log-format") {
		cfg.Log.Format = f.logFormat
	}
	if isFlagSet(fs, "metrics") {
		cfg.Metrics.Enable = f.metrics
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// isFlagSet 检查命令行参数是否被显式设置
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// cliFlags 命令行参数
type cliFlags struct {
	// 配置
	configFile string
	delay      config.Duration
	noReorder  bool
	network    string
	dnsServer  string

	// 运行
	count    int
	interval time.Duration

	// 日志与观测
	logLevel  string
	logFormat string
	metrics   bool

	// 信息显示
	showVersion bool
	showHelp    bool
}

// registerFlags 在 FlagSet 上注册全部参数
func registerFlags(fs *flag.FlagSet) *cliFlags {
	f := &cliFlags{}

	// ─────────────────────────────────────────────────────────────────────
	// 竞速与解析
	// ─────────────────────────────────────────────────────────────────────
	fs.StringVar(&f.configFile, "config", "", "配置文件路径（JSON）")
	f.delay = config.Duration(config.DefaultFallbackDelay)
	fs.Var(&f.delay, "delay", "回退延迟（如 300ms）")
	fs.BoolVar(&f.noReorder, "no-reorder", false, "保持解析顺序，不提前 IPv4 候选")
	fs.StringVar(&f.network, "network", config.NetworkDual, "解析网络 (ip/ip4/ip6)")
	fs.StringVar(&f.dnsServer, "dns", "", "自定义 DNS 服务器 <ip>:<port>")

	// ─────────────────────────────────────────────────────────────────────
	// 运行参数
	// ─────────────────────────────────────────────────────────────────────
	fs.IntVar(&f.count, "count", 1, "竞速次数")
	fs.DurationVar(&f.interval, "interval", time.Second, "多次竞速之间的间隔")

	// ─────────────────────────────────────────────────────────────────────
	// 日志与观测
	// ─────────────────────────────────────────────────────────────────────
	fs.StringVar(&f.logLevel, "log-level", "info", "日志级别 (debug/info/warn/error)")
	fs.StringVar(&f.logFormat, "log-format", "text", "日志格式 (text/json)")
	fs.BoolVar(&f.metrics, "metrics", false, "结束时输出 Prometheus 指标")

	// ─────────────────────────────────────────────────────────────────────
	// 信息显示
	// ─────────────────────────────────────────────────────────────────────
	fs.BoolVar(&f.showVersion, "version", false, "显示版本信息")
	fs.BoolVar(&f.showHelp, "help", false, "显示帮助信息")

	return f
}
