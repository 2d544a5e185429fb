package eyeballs

import "time"

// 尝试结果
const (
	AttemptWon       = "won"
	AttemptFailed    = "failed"
	AttemptAbandoned = "abandoned"
)

// 竞速结果
const (
	RaceWon       = "won"
	RaceExhausted = "exhausted"
	RaceFailed    = "failed"
	RaceCanceled  = "canceled"
)

// Reporter 竞速观测接口
//
// family 取 Family.String()；竞速未产生胜者时 family 为空。
type Reporter interface {
	ObserveAttempt(family, outcome string)
	ObserveRace(outcome, family string, elapsed time.Duration)
}

type nopReporter struct{}

func (nopReporter) ObserveAttempt(string, string) {}
func (nopReporter) ObserveRace(string, string, time.Duration) {}
