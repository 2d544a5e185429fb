package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// ============================================================================
//                              Snapshot
// ============================================================================

// Snapshot 竞速计数汇总
type Snapshot struct {
	// Races 按结果统计的竞速数
	Races map[string]float64

	// Winners 按胜出地址族统计的竞速数
	Winners map[string]float64

	// Attempts 按 "family/outcome" 统计的尝试数
	Attempts map[string]float64
}

// Total 竞速总数
func (s Snapshot) Total() float64 {
	var n float64
	for _, v := range s.Races {
		n += v
	}
	return n
}

// Collect 从 Gatherer 中读取指定命名空间的竞速计数
func Collect(g prometheus.Gatherer, namespace string) (Snapshot, error) {
	snap := Snapshot{
		Races:    make(map[string]float64),
		Winners:  make(map[string]float64),
		Attempts: make(map[string]float64),
	}

	families, err := g.Gather()
	if err != nil {
		return snap, fmt.Errorf("gather metrics: %w", err)
	}

	races := prometheus.BuildFQName(namespace, "", NameRaces)
	attempts := prometheus.BuildFQName(namespace, "", NameAttempts)

	for _, mf := range families {
		switch mf.GetName() {
		case races:
			for _, m := range mf.GetMetric() {
				labels := labelMap(m)
				v := m.GetCounter().GetValue()
				snap.Races[labels["outcome"]] += v
				if f := labels["family"]; f != familyNone {
					snap.Winners[f] += v
				}
			}
		case attempts:
			for _, m := range mf.GetMetric() {
				labels := labelMap(m)
				snap.Attempts[labels["family"]+"/"+labels["outcome"]] += m.GetCounter().GetValue()
			}
		}
	}
	return snap, nil
}

func labelMap(m *dto.Metric) map[string]string {
	out := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

// WriteText 以 Prometheus 文本格式输出全部指标
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
