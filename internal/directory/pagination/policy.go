package pagination

import "time"

// ContinuationPolicy decides whether loading should keep going after the
// initial page came back small. It is pure decision logic; the composition
// root owns the timers that act on it.
type ContinuationPolicy struct {
	// LowWaterMark is the strict threshold: auto-continuation only engages
	// when the initial load produced fewer records than this.
	LowWaterMark int
	// TargetTotal is the working-set size continuation aims for.
	TargetTotal int
	// Delay is the fixed pause between scheduled loads.
	Delay time.Duration
}

// ShouldEngage reports whether the size of the initial load warrants
// auto-continuation at all.
func (p ContinuationPolicy) ShouldEngage(initialCount int) bool {
	return initialCount < p.LowWaterMark
}

// ShouldContinue reports whether another load should be scheduled given the
// current accumulated count. A terminal HasMore always stops continuation.
func (p ContinuationPolicy) ShouldContinue(accumulated int, hasMore bool) bool {
	return hasMore && accumulated < p.TargetTotal
}

// NextDelay returns the pause before the next scheduled load.
func (p ContinuationPolicy) NextDelay() time.Duration {
	return p.Delay
}
