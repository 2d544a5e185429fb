// Package metrics 提供连接竞速的 Prometheus 指标
//
// RaceMetrics 实现 eyeballs.Reporter，记录：
//   - <ns>_races_total{outcome,family}：竞速结果（won/exhausted/failed/canceled）与胜出族
//   - <ns>_attempts_total{family,outcome}：单个尝试的结果（won/failed/abandoned）
//   - <ns>_race_duration_seconds{outcome}：竞速耗时分布
//
// 未产生胜者的竞速 family 标签为 "none"。
//
// # 快速开始
//
//	reg := prometheus.NewRegistry()
//	m, err := metrics.NewRaceMetrics(reg, "eyeballs")
//	if err != nil {
//	    return err
//	}
//	dialer := eyeballs.NewDialer(cfg.Race, eyeballs.WithReporter(m))
//
//	// 导出文本格式
//	metrics.WriteText(os.Stdout, reg)
//
//	// 读取汇总
//	snap, _ := metrics.Collect(reg, "eyeballs")
//	fmt.Println(snap.Races[eyeballs.RaceWon], snap.Winners["ipv6"])
//
// # Fx 模块
//
//	app := fx.New(
//	    fx.Supply(cfg),
//	    metrics.Module,
//	    eyeballs.Module,
//	)
//
// Module 总是提供 *prometheus.Registry（同时作为 Registerer 与 Gatherer）；
// 仅当 cfg.Metrics.Enable 时提供 eyeballs.Reporter。
//
// # 并发安全
//
// 所有方法都是并发安全的，由 prometheus 集合器保证。
package metrics
