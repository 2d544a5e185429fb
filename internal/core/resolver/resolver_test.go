package resolver

import (
	"context"
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-happyeyeballs/config"
	"github.com/dep2p/go-happyeyeballs/internal/core/eyeballs"
)

// fakeLookup 固定结果的查询实现
type fakeLookup struct {
	addrs    map[string][]netip.Addr
	ports    map[string]int
	err      error
	networks []string
	deadline bool
}

func (f *fakeLookup) LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error) {
	f.networks = append(f.networks, network)
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return f.addrs[host], nil
}

func (f *fakeLookup) LookupPort(_ context.Context, _, service string) (int, error) {
	if p, ok := f.ports[service]; ok {
		return p, nil
	}
	return 0, errors.New("unknown port")
}

func addrs(ss ...string) []netip.Addr {
	out := make([]netip.Addr, len(ss))
	for i, s := range ss {
		out[i] = netip.MustParseAddr(s)
	}
	return out
}

func endpoints(cands []eyeballs.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Addr.String()
	}
	return out
}

func newTestResolver(network string, l Lookuper) *Resolver {
	cfg := config.DefaultResolverConfig()
	cfg.Network = network
	return New(cfg, WithLookuper(l))
}

// ============================================================================
//                              解析
// ============================================================================

// TestResolve_PreservesOrder 测试保持解析器顺序、还原映射地址并去重
func TestResolve_PreservesOrder(t *testing.T) {
	l := &fakeLookup{addrs: map[string][]netip.Addr{
		"example.com": addrs("2001:db8::1", "::ffff:192.0.2.1", "2001:db8::2", "192.0.2.1", "2001:db8::1"),
	}}
	r := newTestResolver(config.NetworkDual, l)

	cands, err := r.Resolve(context.Background(), "example.com", "443")
	require.NoError(t, err)

	assert.Equal(t, []string{"[2001:db8::1]:443", "192.0.2.1:443", "[2001:db8::2]:443"}, endpoints(cands))
	assert.Equal(t, eyeballs.FamilyIPv6, cands[0].Family)
	assert.Equal(t, eyeballs.FamilyIPv4, cands[1].Family)
	for _, c := range cands {
		assert.Equal(t, "example.com", c.Name)
	}
	assert.Equal(t, []string{"ip"}, l.networks)
	assert.True(t, l.deadline, "lookup must be bounded by the resolver timeout")
}

// TestResolve_NetworkFilter 测试按地址族过滤
func TestResolve_NetworkFilter(t *testing.T) {
	l := &fakeLookup{addrs: map[string][]netip.Addr{
		"example.com": addrs("2001:db8::1", "::ffff:192.0.2.1", "192.0.2.2"),
	}}

	cands, err := newTestResolver(config.NetworkIPv4, l).Resolve(context.Background(), "example.com", "80")
	require.NoError(t, err)
	assert.Equal(t, []string{"192.0.2.1:80", "192.0.2.2:80"}, endpoints(cands))

	cands, err = newTestResolver(config.NetworkIPv6, l).Resolve(context.Background(), "example.com", "80")
	require.NoError(t, err)
	assert.Equal(t, []string{"[2001:db8::1]:80"}, endpoints(cands))
}

// TestResolve_Literal 测试 IP 字面量不经过查询
func TestResolve_Literal(t *testing.T) {
	l := &fakeLookup{}
	r := newTestResolver(config.NetworkDual, l)

	cands, err := r.Resolve(context.Background(), "[::1]", "8080")
	require.NoError(t, err)
	assert.Equal(t, []string{"[::1]:8080"}, endpoints(cands))

	cands, err = r.Resolve(context.Background(), "127.0.0.1", "8080")
	require.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.1:8080"}, endpoints(cands))
	assert.Empty(t, l.networks)

	_, err = newTestResolver(config.NetworkIPv4, l).Resolve(context.Background(), "::1", "8080")
	assert.ErrorIs(t, err, ErrNoAddresses)
}

// TestResolve_Service 测试数字端口与服务名
func TestResolve_Service(t *testing.T) {
	l := &fakeLookup{ports: map[string]int{"https": 443, "weird": 70000}}
	r := newTestResolver(config.NetworkDual, l)

	cands, err := r.Resolve(context.Background(), "192.0.2.1", "https")
	require.NoError(t, err)
	assert.Equal(t, uint16(443), cands[0].Addr.Port())

	for _, svc := range []string{"", "0", "65536", "gopher-nope", "weird"} {
		_, err := r.Resolve(context.Background(), "192.0.2.1", svc)
		assert.ErrorIs(t, err, ErrInvalidPort, "service %q", svc)
	}
}

func TestResolve_Errors(t *testing.T) {
	lookupErr := errors.New("server misbehaving")
	r := newTestResolver(config.NetworkDual, &fakeLookup{err: lookupErr})

	_, err := r.Resolve(context.Background(), "example.com", "80")
	assert.ErrorIs(t, err, lookupErr)

	_, err = r.Resolve(context.Background(), "", "80")
	assert.ErrorIs(t, err, ErrEmptyHost)

	r = newTestResolver(config.NetworkDual, &fakeLookup{})
	_, err = r.Resolve(context.Background(), "nothing.example", "80")
	assert.ErrorIs(t, err, ErrNoAddresses)
}

// TestResolve_NoTimeout 测试超时为 0 时不额外限制
func TestResolve_NoTimeout(t *testing.T) {
	l := &fakeLookup{addrs: map[string][]netip.Addr{"example.com": addrs("192.0.2.1")}}
	r := New(config.ResolverConfig{}, WithLookuper(l))
	assert.Equal(t, config.NetworkDual, r.Network())

	_, err := r.Resolve(context.Background(), "example.com", "80")
	require.NoError(t, err)
	assert.False(t, l.deadline)
}

// TestNew_CustomServer 测试配置 DNS 服务器时使用独立的解析器
func TestNew_CustomServer(t *testing.T) {
	cfg := config.DefaultResolverConfig()
	cfg.Server = "127.0.0.1:5353"
	cfg.Timeout = config.Duration(time.Second)

	r := New(cfg)
	assert.NotNil(t, r.lookup)
	assert.NotSame(t, r.lookup, New(config.DefaultResolverConfig()).lookup)
}

// ============================================================================
//                              Fx 模块
// ============================================================================

func TestModule(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Resolver.Network = config.NetworkIPv6
	l := &fakeLookup{}

	var r *Resolver
	app := fxtest.New(t,
		fx.NopLogger,
		fx.Supply(cfg),
		fx.Provide(func() Lookuper { return l }),
		Module,
		fx.Populate(&r),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.Equal(t, config.NetworkIPv6, r.Network())
	assert.Same(t, l, r.lookup)
}

func TestConfigFromUnified(t *testing.T) {
	assert.Equal(t, config.DefaultResolverConfig(), ConfigFromUnified(nil))
}
