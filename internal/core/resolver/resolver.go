// Package resolver 将主机名与服务解析为有序的竞速候选
//
// 解析本身委托给系统解析器（或配置的 DNS 服务器），本包只负责：
//   - 数字或命名服务到端口的转换
//   - 按 ip / ip4 / ip6 过滤地址族
//   - IPv4 映射地址还原、去重，并保持解析器返回的顺序
//
// 示例：
//
//	r := resolver.New(config.DefaultResolverConfig())
//	cands, err := r.Resolve(ctx, "example.com", "443")
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/dep2p/go-happyeyeballs/config"
	"github.com/dep2p/go-happyeyeballs/internal/core/eyeballs"
	"github.com/dep2p/go-happyeyeballs/pkg/lib/log"
)

var logger = log.Logger("eyeballs/resolver")

// 错误定义
var (
	// ErrEmptyHost 主机名为空
	ErrEmptyHost = errors.New("empty host")

	// ErrInvalidPort 无效的端口或未知的服务名
	ErrInvalidPort = errors.New("invalid port")

	// ErrNoAddresses 解析结果中没有可用地址
	ErrNoAddresses = errors.New("no addresses")
)

// Lookuper 地址与端口查询接口，*net.Resolver 满足该接口
type Lookuper interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
	LookupPort(ctx context.Context, network, service string) (int, error)
}

var _ Lookuper = (*net.Resolver)(nil)

// Resolver 候选地址解析器
type Resolver struct {
	lookup  Lookuper
	network string
	timeout time.Duration
}

// Option 解析器选项
type Option func(*Resolver)

// WithLookuper 替换底层查询实现
func WithLookuper(l Lookuper) Option {
	return func(r *Resolver) {
		if l != nil {
			r.lookup = l
		}
	}
}

// New 创建解析器
//
// cfg.Server 非空时所有 DNS 查询发往该服务器。
func New(cfg config.ResolverConfig, opts ...Option) *Resolver {
	r := &Resolver{
		lookup:  net.DefaultResolver,
		network: cfg.Network,
		timeout: cfg.Timeout.Duration(),
	}
	if r.network == "" {
		r.network = config.NetworkDual
	}

	if cfg.Server != "" {
		server := cfg.Server
		timeout := r.timeout
		r.lookup = &net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
				d := net.Dialer{Timeout: timeout}
				return d.DialContext(ctx, network, server)
			},
		}
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Network 返回解析网络
func (r *Resolver) Network() string {
	return r.network
}

// Resolve 将 host 与 service 解析为流式候选序列
//
// host 可以是主机名或 IP 字面量（IPv6 可带方括号）；service 可以是端口号或服务名。
// 返回的候选保持解析器给出的顺序，展示名为 host。
func (r *Resolver) Resolve(ctx context.Context, host, service string) ([]eyeballs.Candidate, error) {
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if host == "" {
		return nil, ErrEmptyHost
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	port, err := r.port(ctx, service)
	if err != nil {
		return nil, err
	}

	var addrs []netip.Addr
	if ip, err := netip.ParseAddr(host); err == nil {
		addrs = []netip.Addr{ip}
	} else {
		addrs, err = r.lookup.LookupNetIP(ctx, r.network, host)
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", host, err)
		}
	}

	cands := r.candidates(host, addrs, port)
	if len(cands) == 0 {
		return nil, fmt.Errorf("%w for %s (network %s)", ErrNoAddresses, host, r.network)
	}

	logger.Debug("解析完成",
		"host", host,
		"service", service,
		"network", r.network,
		"candidates", len(cands))
	return cands, nil
}

// port 解析数字端口或服务名
func (r *Resolver) port(ctx context.Context, service string) (uint16, error) {
	if service == "" {
		return 0, fmt.Errorf("%w: empty service", ErrInvalidPort)
	}
	if n, err := strconv.ParseUint(service, 10, 16); err == nil {
		if n == 0 {
			return 0, fmt.Errorf("%w: %s", ErrInvalidPort, service)
		}
		return uint16(n), nil
	}

	n, err := r.lookup.LookupPort(ctx, "tcp", service)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidPort, service, err)
	}
	if n <= 0 || n > 65535 {
		return 0, fmt.Errorf("%w: %s resolved to %d", ErrInvalidPort, service, n)
	}
	return uint16(n), nil
}

// candidates 过滤地址族、去重并构造候选
func (r *Resolver) candidates(host string, addrs []netip.Addr, port uint16) []eyeballs.Candidate {
	seen := make(map[netip.Addr]struct{}, len(addrs))
	cands := make([]eyeballs.Candidate, 0, len(addrs))

	for _, ip := range addrs {
		if !ip.IsValid() {
			continue
		}
		ip = ip.Unmap()
		if !r.accepts(ip) {
			continue
		}
		if _, dup := seen[ip]; dup {
			continue
		}
		seen[ip] = struct{}{}
		cands = append(cands, eyeballs.NewCandidate(netip.AddrPortFrom(ip, port), 0, 0, host))
	}
	return cands
}

func (r *Resolver) accepts(ip netip.Addr) bool {
	switch r.network {
	case config.NetworkIPv4:
		return ip.Is4()
	case config.NetworkIPv6:
		return ip.Is6()
	default:
		return true
	}
}
