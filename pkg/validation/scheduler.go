package validation

import "time"

// Scheduler runs fn after delay. Focus moves go through it so hosts decide
// how the cosmetic delay is honoured.
type Scheduler interface {
	Schedule(delay time.Duration, fn func())
}

// SchedulerFunc adapts a function into a Scheduler.
type SchedulerFunc func(delay time.Duration, fn func())

// Schedule delegates to the underlying function.
func (f SchedulerFunc) Schedule(delay time.Duration, fn func()) {
	f(delay, fn)
}

// Immediate runs fn synchronously and ignores the delay.
var Immediate Scheduler = SchedulerFunc(func(_ time.Duration, fn func()) { fn() })
