package appointment

import "time"

// Metrics receives service level measurements.
type Metrics interface {
	Mutation(op, outcome string)
	LockWait(d time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) Mutation(string, string) {}
func (nopMetrics) LockWait(time.Duration)  {}
