package ticktock

import "time"

// TimerProvider is the one boundary the scheduler depends on: a
// fire-and-forget request to run fn once, after approximately d, on an
// execution context of the provider's choosing. Providers may deliver the
// callback inline on the calling goroutine.
type TimerProvider interface {
	ScheduleCallback(d time.Duration, fn func())
}

// systemTimers delivers callbacks via the runtime timer heap.
type systemTimers struct{}

func (systemTimers) ScheduleCallback(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// SystemTimers returns the default TimerProvider, backed by time.AfterFunc.
func SystemTimers() TimerProvider {
	return systemTimers{}
}
