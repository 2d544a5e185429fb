package happyeyeballs

import (
	"errors"

	"github.com/dep2p/go-happyeyeballs/config"
	"github.com/dep2p/go-happyeyeballs/internal/core/eyeballs"
	"github.com/dep2p/go-happyeyeballs/internal/core/resolver"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 客户端生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrClientClosed 客户端已关闭
	ErrClientClosed = errors.New("client closed")

	// ErrMetricsDisabled 未启用指标
	ErrMetricsDisabled = errors.New("metrics disabled")

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = config.ErrInvalidConfig

	// ────────────────────────────────────────────────────────────────────────
	// 解析错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrEmptyHost 主机名为空
	ErrEmptyHost = resolver.ErrEmptyHost

	// ErrInvalidPort 无效的端口或服务名
	ErrInvalidPort = resolver.ErrInvalidPort

	// ErrNoAddresses 没有可用地址
	ErrNoAddresses = resolver.ErrNoAddresses

	// ────────────────────────────────────────────────────────────────────────
	// 竞速错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrEmptyCandidateList 没有候选地址
	ErrEmptyCandidateList = eyeballs.ErrEmptyCandidateList

	// ErrAllCandidatesExhausted 所有候选均失败
	ErrAllCandidatesExhausted = eyeballs.ErrAllCandidatesExhausted

	// ErrMultiplex 就绪等待失败
	ErrMultiplex = eyeballs.ErrMultiplex
)
