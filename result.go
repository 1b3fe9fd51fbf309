package ticktock

import "time"

// Result is returned by a scheduled closure and tells the scheduler what to
// do with the subscription next. The zero value is Stop.
type Result struct {
	kind     resultKind
	interval time.Duration
}

type resultKind uint8

const (
	kindStop resultKind = iota
	kindRepeat
	kindRepeatAfter
)

// Stop ends the subscription; the closure will not run again.
func Stop() Result {
	return Result{kind: kindStop}
}

// Repeat fires the closure again after the same interval that was just used.
func Repeat() Result {
	return Result{kind: kindRepeat}
}

// RepeatAfter fires the closure again after d, replacing the subscription's
// stored interval. d must be positive.
func RepeatAfter(d time.Duration) Result {
	return Result{kind: kindRepeatAfter, interval: d}
}
