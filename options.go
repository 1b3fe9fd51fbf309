package ticktock

import "log/slog"

// Option configures a Scheduler.
type Option interface {
	apply(*Scheduler)
}

type optionFunc func(*Scheduler)

func (f optionFunc) apply(s *Scheduler) { f(s) }

// WithTimerProvider replaces the timer primitive used to deliver firings.
func WithTimerProvider(tp TimerProvider) Option {
	return optionFunc(func(s *Scheduler) {
		s.timers = tp
	})
}

// WithLogger sets the logger used for recovered panics and journal errors.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(s *Scheduler) {
		s.logger = l
	})
}

// WithJournal attaches a firing journal; every completed firing is recorded.
func WithJournal(j Journal) Option {
	return optionFunc(func(s *Scheduler) {
		s.journal = j
	})
}

// WithEventBuffer sets the buffer size of channels returned by Subscribe.
func WithEventBuffer(n int) Option {
	return optionFunc(func(s *Scheduler) {
		if n > 0 {
			s.eventBuf = n
		}
	})
}
