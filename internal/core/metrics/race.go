package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-happyeyeballs/internal/core/eyeballs"
	"github.com/dep2p/go-happyeyeballs/pkg/lib/log"
)

var logger = log.Logger("eyeballs/metrics")

// 指标名（不含命名空间）
const (
	NameRaces    = "races_total"
	NameAttempts = "attempts_total"
	NameDuration = "race_duration_seconds"
)

// familyNone 未产生胜者时的 family 标签
const familyNone = "none"

// ErrEmptyNamespace 命名空间为空
var ErrEmptyNamespace = errors.New("metrics namespace is empty")

// RaceMetrics 竞速指标集合
type RaceMetrics struct {
	races    *prometheus.CounterVec
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// 确保 RaceMetrics 实现 eyeballs.Reporter 接口
var _ eyeballs.Reporter = (*RaceMetrics)(nil)

// NewRaceMetrics 创建并注册竞速指标
func NewRaceMetrics(reg prometheus.Registerer, namespace string) (*RaceMetrics, error) {
	if namespace == "" {
		return nil, ErrEmptyNamespace
	}

	m := &RaceMetrics{
		races: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      NameRaces,
			Help:      "Connection races by outcome and winning address family",
		}, []string{"outcome", "family"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      NameAttempts,
			Help:      "Connection attempts by address family and outcome",
		}, []string{"family", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      NameDuration,
			Help:      "Time from the first connect to the race result",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms ~ 8s
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{m.races, m.attempts, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register race metrics: %w", err)
		}
	}

	logger.Debug("竞速指标已注册", "namespace", namespace)
	return m, nil
}

// ObserveAttempt 记录单个尝试的结果
func (m *RaceMetrics) ObserveAttempt(family, outcome string) {
	m.attempts.WithLabelValues(family, outcome).Inc()
}

// ObserveRace 记录竞速结果与耗时
func (m *RaceMetrics) ObserveRace(outcome, family string, elapsed time.Duration) {
	if family == "" {
		family = familyNone
	}
	m.races.WithLabelValues(outcome, family).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
