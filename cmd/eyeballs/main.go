//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

// Package main 提供 eyeballs 命令行入口
//
// 对 HOST PORT 执行 Happy Eyeballs 竞速并打印胜出的地址。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"

	happyeyeballs "github.com/dep2p/go-happyeyeballs"
	"github.com/dep2p/go-happyeyeballs/config"
	"github.com/dep2p/go-happyeyeballs/internal/core/metrics"
	"github.com/dep2p/go-happyeyeballs/pkg/lib/log"
)

var logger = log.Logger("eyeballs/cmd")

// errUsage 参数错误
var errUsage = errors.New("usage: eyeballs [flags] HOST PORT")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("eyeballs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	// 显示版本
	if f.showVersion {
		printVersion(stdout)
		return nil
	}

	// 显示帮助
	if f.showHelp {
		printHelp(stdout, fs)
		return nil
	}

	if fs.NArg() != 2 {
		return errUsage
	}
	if f.count < 1 {
		return fmt.Errorf("count 必须大于 0: %d", f.count)
	}
	host, service := fs.Arg(0), fs.Arg(1)

	cfg, err := buildConfig(fs, f)
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	// 设置日志
	opts := cfg.Log.Options()
	opts.Output = stderr
	log.Setup(opts)

	client, err := happyeyeballs.NewClient(ctx, happyeyeballs.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = client.Close() }()

	logger.Debug("开始竞速", "host", host, "service", service, "count", f.count,
		"delay", cfg.Race.FallbackDelay.String())

	// 多次竞速按 interval 限速
	limiter := rate.NewLimiter(rate.Every(f.interval), 1)
	var failed int
	for i := 0; i < f.count; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := raceOnce(ctx, client, host, service, stdout); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed++
			logger.Warn("竞速失败", "host", host, "service", service, "err", err)
			if f.count == 1 {
				return err
			}
		}
	}

	if cfg.Metrics.Enable {
		if g := client.Gatherer(); g != nil {
			if err := metrics.WriteText(stdout, g); err != nil {
				return err
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d/%d 次竞速失败", failed, f.count)
	}
	return nil
}

// raceOnce 执行一次竞速并打印结果
func raceOnce(ctx context.Context, client *happyeyeballs.Client, host, service string, w io.Writer) error {
	res, err := client.Race(ctx, host, service)
	if err != nil {
		return err
	}
	defer func() { _ = unix.Close(res.FD) }()

	fmt.Fprintf(w, "%s\t%s\tindex=%d\tattempts=%d\treorder=%s\telapsed=%s\n",
		res.Candidate.Addr, res.Candidate.Family, res.Index, res.Attempts, res.Reorder, res.Elapsed)
	return nil
}

// printVersion 打印版本信息
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "eyeballs %s\n", happyeyeballs.Version)
	if happyeyeballs.GitCommit != "" {
		fmt.Fprintf(w, "  commit: %s\n", happyeyeballs.GitCommit)
	}
	if happyeyeballs.BuildDate != "" {
		fmt.Fprintf(w, "  built:  %s\n", happyeyeballs.BuildDate)
	}
}

// printHelp 打印帮助信息
func printHelp(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "eyeballs - Happy Eyeballs (RFC 6555) 连接竞速")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "用法:")
	fmt.Fprintln(w, "  eyeballs [选项] HOST PORT")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "选项:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "环境变量:")
	fmt.Fprintf(w, "  %s%-16s 回退延迟（如 300ms）\n", config.EnvPrefix, config.EnvFallbackDelay)
	fmt.Fprintf(w, "  %s%-16s 解析网络 (ip/ip4/ip6)\n", config.EnvPrefix, config.EnvNetwork)
	fmt.Fprintf(w, "  %s%-16s 解析超时\n", config.EnvPrefix, config.EnvResolveTimeout)
	fmt.Fprintf(w, "  %s%-16s 自定义 DNS 服务器\n", config.EnvPrefix, config.EnvDNSServer)
	fmt.Fprintf(w, "  %s%-16s 日志级别\n", config.EnvPrefix, config.EnvLogLevel)
	fmt.Fprintf(w, "  %s%-16s 日志格式\n", config.EnvPrefix, config.EnvLogFormat)
	fmt.Fprintf(w, "  %s%-16s 启用指标 (true/false)\n", config.EnvPrefix, config.EnvMetrics)
}
