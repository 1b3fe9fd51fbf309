// Package ticktock provides a lightweight deferred/recurring task scheduler
// built on a pluggable one-shot timer primitive.
//
// Tasks are closures scheduled to run once after a delay, repeatedly at a
// fixed interval, or repeatedly with a delay chosen by the closure itself
// after each run. Every scheduled task is identified by an opaque
// SubscriberID that can be used to cancel it before it fires.
//
// Basic usage:
//
//	s := ticktock.New()
//
//	// Run once after two seconds.
//	s.Once(2*time.Second, func() { fmt.Println("hello") })
//
//	// Run every minute until cancelled.
//	beat := s.Every(time.Minute, heartbeat)
//
//	// Let the task pick its own next delay.
//	s.After(time.Second, func() ticktock.Result {
//	    if done() {
//	        return ticktock.Stop()
//	    }
//	    return ticktock.RepeatAfter(backoff())
//	})
//
//	beat.Cancel()
package ticktock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SubscriberID identifies one scheduled task. IDs are unique for the life of
// the process and never reused, even after the task stops or is cancelled.
// The zero value is valid and identifies nothing.
type SubscriberID struct {
	id uint64
	s  *Scheduler
}

// Cancel removes the task from its scheduler, reporting whether it was still
// pending. Shorthand for calling Cancel on the scheduler that issued the id.
func (id SubscriberID) Cancel() bool {
	if id.s == nil {
		return false
	}
	return id.s.Cancel(id)
}

func (id SubscriberID) String() string {
	return fmt.Sprintf("subscriber#%d", id.id)
}

// subscription is one pending task. interval is the delay before the next
// firing and is rewritten only by the firing handler on RepeatAfter.
type subscription struct {
	fn       func() Result
	interval time.Duration
}

// Scheduler owns the table of pending tasks and re-arms the timer provider
// after each firing. Schedule and cancel calls are safe from any goroutine,
// including from within a firing closure.
type Scheduler struct {
	timers  TimerProvider
	logger  *slog.Logger
	journal Journal

	mu        sync.Mutex
	nextID    uint64
	subs      map[uint64]*subscription
	eventSubs []chan Event
	eventBuf  int
}

// New creates a Scheduler backed by the system timer heap unless overridden
// with WithTimerProvider.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		timers:   SystemTimers(),
		logger:   slog.Default(),
		subs:     make(map[uint64]*subscription),
		eventBuf: 64,
	}
	for _, opt := range opts {
		opt.apply(s)
	}
	return s
}

// Once runs fn exactly once, after d has elapsed. d must be positive.
func (s *Scheduler) Once(d time.Duration, fn func()) SubscriberID {
	return s.After(d, func() Result {
		fn()
		return Stop()
	})
}

// Every runs fn repeatedly, d apart, until cancelled. d must be positive.
func (s *Scheduler) Every(d time.Duration, fn func()) SubscriberID {
	return s.After(d, func() Result {
		fn()
		return Repeat()
	})
}

// After runs fn after d and then follows the Result it returns: stop, repeat
// after the same delay, or repeat after a new one. d must be positive.
// Once and Every are wrappers around this.
func (s *Scheduler) After(d time.Duration, fn func() Result) SubscriberID {
	if d <= 0 {
		panic(fmt.Sprintf("ticktock: non-positive schedule interval %v", d))
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[id] = &subscription{fn: fn, interval: d}
	s.mu.Unlock()

	s.emit(&TaskScheduled{ID: id, Interval: d, Timestamp: time.Now()})
	s.arm(id, d)
	return SubscriberID{id: id, s: s}
}

// Cancel removes a pending task. It returns false if the id was never issued
// by this scheduler, already fired and stopped, or already cancelled.
func (s *Scheduler) Cancel(id SubscriberID) bool {
	if id.s != nil && id.s != s {
		return false
	}

	s.mu.Lock()
	_, ok := s.subs[id.id]
	if ok {
		delete(s.subs, id.id)
	}
	s.mu.Unlock()

	if ok {
		s.emit(&TaskCancelled{ID: id.id, Timestamp: time.Now()})
	}
	return ok
}

// CancelAll cancels every id in ids within a single critical section, so the
// removals are observed atomically relative to concurrent firings. The
// returned slice parallels ids. Empty input returns nil without locking.
func (s *Scheduler) CancelAll(ids []SubscriberID) []bool {
	if len(ids) == 0 {
		return nil
	}

	out := make([]bool, len(ids))
	s.mu.Lock()
	for i, id := range ids {
		if id.s != nil && id.s != s {
			continue
		}
		if _, ok := s.subs[id.id]; ok {
			delete(s.subs, id.id)
			out[i] = true
		}
	}
	s.mu.Unlock()

	now := time.Now()
	for i, id := range ids {
		if out[i] {
			s.emit(&TaskCancelled{ID: id.id, Timestamp: now})
		}
	}
	return out
}

// Pending reports how many tasks are currently scheduled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// arm registers the next one-shot callback for id. Never called with the
// table lock held: a TimerProvider is allowed to deliver the callback inline
// on the calling goroutine, and fire takes the same lock.
func (s *Scheduler) arm(id uint64, d time.Duration) {
	s.timers.ScheduleCallback(d, func() { s.fire(id) })
}

// fire is the firing handler, invoked by the timer provider when a
// previously requested delay for id elapses.
func (s *Scheduler) fire(id uint64) {
	s.mu.Lock()
	sub, ok := s.subs[id]
	if !ok {
		// Cancelled between arming and firing. Expected race, not an error.
		s.mu.Unlock()
		return
	}
	fn := sub.fn
	s.mu.Unlock()

	// The closure runs outside the table lock so it can schedule new tasks
	// or cancel any id, including its own, without deadlocking.
	start := time.Now()
	res := s.invoke(id, fn)
	took := time.Since(start)

	s.mu.Lock()
	sub, ok = s.subs[id]
	if !ok {
		// Removed while the closure ran, either by the closure itself or by
		// a concurrent Cancel. Whatever the Result says, do not re-arm.
		s.mu.Unlock()
		s.afterFiring(id, start, took, OutcomeCancelled, 0)
		return
	}

	var next time.Duration
	var outcome Outcome
	switch res.kind {
	case kindStop:
		delete(s.subs, id)
		outcome = OutcomeStopped
	case kindRepeat:
		next = sub.interval
		outcome = OutcomeRepeated
	case kindRepeatAfter:
		if res.interval <= 0 {
			s.mu.Unlock()
			panic(fmt.Sprintf("ticktock: %s returned non-positive repeat interval %v", SubscriberID{id: id, s: s}, res.interval))
		}
		sub.interval = res.interval
		next = res.interval
		outcome = OutcomeRescheduled
	}
	s.mu.Unlock()

	if next > 0 {
		s.arm(id, next)
	}
	s.afterFiring(id, start, took, outcome, next)
}

// invoke runs the closure, converting a panic into Stop so one broken task
// does not take the process down or leak its table entry.
func (s *Scheduler) invoke(id uint64, fn func() Result) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled task panicked",
				"subscriber", id,
				"panic", r)
			res = Stop()
		}
	}()
	return fn()
}

// afterFiring emits the firing events and writes the journal entry, outside
// the table lock.
func (s *Scheduler) afterFiring(id uint64, firedAt time.Time, took time.Duration, outcome Outcome, next time.Duration) {
	s.emit(&TaskFired{ID: id, Took: took, Outcome: outcome, Next: next, Timestamp: firedAt})
	if outcome == OutcomeStopped {
		s.emit(&TaskStopped{ID: id, Timestamp: firedAt})
	}

	if s.journal == nil {
		return
	}
	rec := &FiringRecord{
		Subscriber: id,
		FiredAt:    firedAt,
		Took:       took,
		Outcome:    outcome,
		NextDelay:  next,
	}
	if err := s.journal.RecordFiring(context.Background(), rec); err != nil {
		s.logger.Error("failed to record firing",
			"subscriber", id,
			"error", err)
	}
}
