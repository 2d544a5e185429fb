//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package happyeyeballs

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-happyeyeballs/config"
	"github.com/dep2p/go-happyeyeballs/internal/core/eyeballs"
	"github.com/dep2p/go-happyeyeballs/internal/core/metrics"
	"github.com/dep2p/go-happyeyeballs/internal/core/resolver"
	"github.com/dep2p/go-happyeyeballs/pkg/lib/log"
)

var logger = log.Logger("eyeballs/client")

// Result 竞速结果
type Result = eyeballs.Result

// stopTimeout 关闭 Fx 应用的超时
const stopTimeout = 5 * time.Second

// Client Happy Eyeballs 客户端
//
// Client 可被多个 goroutine 同时使用；每次 Race/Dial 独立完成一次竞速。
type Client struct {
	cfg *config.Config
	app *fx.App

	dialer   *eyeballs.Dialer
	resolver *resolver.Resolver
	gatherer prometheus.Gatherer

	mu     sync.RWMutex
	closed bool
}

// NewClient 创建并启动客户端
//
// 配置优先级：Option > WithConfig 传入的配置 > 默认值。
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	cfg := o.toConfig()
	c := &Client{cfg: cfg}

	app, err := buildFxApp(cfg, o, c)
	if err != nil {
		return nil, err
	}
	if err := app.Start(ctx); err != nil {
		return nil, fmt.Errorf("start client: %w", err)
	}
	c.app = app

	logger.Debug("客户端已启动",
		"delay", cfg.Race.FallbackDelay.String(),
		"reorder", cfg.Race.Reorder,
		"network", cfg.Resolver.Network,
		"metrics", c.gatherer != nil)
	return c, nil
}

// Config 返回客户端使用的配置副本
func (c *Client) Config() config.Config {
	return *c.cfg
}

// Resolve 将主机与服务解析为候选序列
func (c *Client) Resolve(ctx context.Context, host, service string) ([]Candidate, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	return c.resolver.Resolve(ctx, host, service)
}

// Race 解析并竞速，返回胜者的原始描述符
//
// 调用方负责关闭 Result.FD。
func (c *Client) Race(ctx context.Context, host, service string) (*Result, error) {
	cands, err := c.Resolve(ctx, host, service)
	if err != nil {
		return nil, err
	}
	return c.dialer.Race(ctx, cands)
}

// RaceCandidates 对已解析的候选执行竞速
func (c *Client) RaceCandidates(ctx context.Context, cands []Candidate) (*Result, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	return c.dialer.Race(ctx, cands)
}

// Dial 解析并竞速，以 net.Conn 返回胜者
func (c *Client) Dial(ctx context.Context, host, service string) (net.Conn, *Result, error) {
	cands, err := c.Resolve(ctx, host, service)
	if err != nil {
		return nil, nil, err
	}
	return c.dialer.DialContext(ctx, cands)
}

// Metrics 返回竞速计数汇总
//
// 未启用内置指标时返回 ErrMetricsDisabled。
func (c *Client) Metrics() (MetricsSnapshot, error) {
	if err := c.check(); err != nil {
		return MetricsSnapshot{}, err
	}
	if c.gatherer == nil {
		return MetricsSnapshot{}, ErrMetricsDisabled
	}
	return metrics.Collect(c.gatherer, c.cfg.Metrics.Namespace)
}

// Gatherer 返回内置指标的 Gatherer，未启用时为 nil
func (c *Client) Gatherer() prometheus.Gatherer {
	return c.gatherer
}

// Close 关闭客户端
//
// 重复调用是安全的。
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return c.app.Stop(ctx)
}

func (c *Client) check() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}
