package ticktock

import "time"

// Event is the interface for all scheduler events.
type Event interface {
	eventMarker()
}

// TaskScheduled is emitted when a new task enters the subscriber table.
type TaskScheduled struct {
	ID        uint64
	Interval  time.Duration
	Timestamp time.Time
}

func (*TaskScheduled) eventMarker() {}

// TaskFired is emitted after each completed invocation of a task's closure.
type TaskFired struct {
	ID        uint64
	Took      time.Duration
	Outcome   Outcome
	Next      time.Duration // zero unless the task was re-armed
	Timestamp time.Time
}

func (*TaskFired) eventMarker() {}

// TaskStopped is emitted when a closure ends its own subscription.
type TaskStopped struct {
	ID        uint64
	Timestamp time.Time
}

func (*TaskStopped) eventMarker() {}

// TaskCancelled is emitted when a pending task is cancelled by a caller.
type TaskCancelled struct {
	ID        uint64
	Timestamp time.Time
}

func (*TaskCancelled) eventMarker() {}

// Subscribe returns a channel of scheduler events. The channel is buffered;
// events are dropped rather than block the firing path when a subscriber
// falls behind.
func (s *Scheduler) Subscribe() <-chan Event {
	ch := make(chan Event, s.eventBuf)
	s.mu.Lock()
	s.eventSubs = append(s.eventSubs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Scheduler) emit(ev Event) {
	s.mu.Lock()
	subs := s.eventSubs
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
