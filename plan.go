package ticktock

import (
	"time"

	"github.com/robfig/cron/v3"
)

// Plan computes when a recurring task should next run. Implementations must
// return a time strictly after from.
type Plan interface {
	Next(from time.Time) time.Time
}

// Schedule runs fn according to plan, recomputing the delay after every
// firing. It is built on After with RepeatAfter, so the task re-arms with a
// fresh delay each time rather than a fixed interval. Cancel the returned id
// to stop it.
func (s *Scheduler) Schedule(plan Plan, fn func()) SubscriberID {
	now := time.Now()
	return s.After(plan.Next(now).Sub(now), func() Result {
		fn()
		now := time.Now()
		return RepeatAfter(plan.Next(now).Sub(now))
	})
}

// Daily returns a plan that runs once a day at the given UTC wall time.
func Daily(hour, minute int) Plan {
	return wallClockPlan{hour: hour, minute: minute}
}

// Weekly returns a plan that runs once a week on the given UTC day and time.
func Weekly(day time.Weekday, hour, minute int) Plan {
	return wallClockPlan{day: &day, hour: hour, minute: minute}
}

// wallClockPlan hits a wall-clock time daily, or weekly when day is set.
type wallClockPlan struct {
	day    *time.Weekday
	hour   int
	minute int
}

func (p wallClockPlan) Next(from time.Time) time.Time {
	from = from.In(time.UTC)
	next := time.Date(from.Year(), from.Month(), from.Day(), p.hour, p.minute, 0, 0, time.UTC)

	if p.day == nil {
		if !next.After(from) {
			next = next.AddDate(0, 0, 1)
		}
		return next
	}

	ahead := int(*p.day-from.Weekday()+7) % 7
	next = next.AddDate(0, 0, ahead)
	if !next.After(from) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// Cron returns a plan from a standard 5-field cron expression
// (minute, hour, day of month, month, day of week). It panics if the
// expression does not parse; a malformed expression is a programmer error.
func Cron(expr string) Plan {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(expr)
	if err != nil {
		panic("ticktock: invalid cron expression: " + err.Error())
	}
	return cronPlan{sched: sched}
}

type cronPlan struct {
	sched cron.Schedule
}

func (p cronPlan) Next(from time.Time) time.Time {
	return p.sched.Next(from)
}
