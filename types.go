package happyeyeballs

import (
	"github.com/dep2p/go-happyeyeballs/config"
	"github.com/dep2p/go-happyeyeballs/internal/core/eyeballs"
	"github.com/dep2p/go-happyeyeballs/internal/core/metrics"
	"github.com/dep2p/go-happyeyeballs/internal/core/resolver"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

type (
	// Config 完整配置
	Config = config.Config

	// Candidate 候选地址
	Candidate = eyeballs.Candidate

	// Family 地址族
	Family = eyeballs.Family

	// Reporter 竞速观测接口
	Reporter = eyeballs.Reporter

	// Lookuper 地址与端口查询接口
	Lookuper = resolver.Lookuper

	// AttemptError 单个候选的失败
	AttemptError = eyeballs.AttemptError

	// ExhaustedError 全部候选失败
	ExhaustedError = eyeballs.ExhaustedError

	// MultiplexError 就绪等待失败
	MultiplexError = eyeballs.MultiplexError

	// MetricsSnapshot 竞速计数汇总
	MetricsSnapshot = metrics.Snapshot
)

// 地址族
const (
	FamilyIPv4 = eyeballs.FamilyIPv4
	FamilyIPv6 = eyeballs.FamilyIPv6
)
