// Package trig implements the two edge/cycle timing primitives shared by
// task events and Modbus actions: a rising-edge latch and a periodic
// cycle gate. Both are plain value types with no locking of their own —
// callers (Task, Action) own the synchronization, since the scheduler
// never invokes them concurrently.
package trig

import "time"

// Edge is a rising-edge detector: Sample returns true exactly once per
// low-to-high transition of its input, and false on every other call,
// including while the input remains continuously high.
//
// This mirrors the RTrig block found in ladder-logic and IEC 61131-3
// standard libraries: Q = CLK AND NOT CLK_previous.
type Edge struct {
	last bool
}

// Sample advances the detector with the current sampled bit and reports
// whether this call represents a rising edge.
func (e *Edge) Sample(bit bool) bool {
	q := bit && !e.last
	e.last = bit
	return q
}

// Reset clears the detector's memory of the previous sample, as if it had
// never been sampled.
func (e *Edge) Reset() {
	e.last = false
}

// Cycle is a periodic gate: Ready reports true once period has elapsed
// since the last call to Fire, and keeps reporting true until the next
// Fire, so it fires at most once per period when Fire is called each time
// the gated work runs.
type Cycle struct {
	period time.Duration
	last   time.Time
	armed  bool
}

// NewCycle returns a Cycle that is ready immediately on its first Ready
// call, then subsequently gated by period.
func NewCycle(period time.Duration) *Cycle {
	return &Cycle{period: period}
}

// Ready reports whether period has elapsed since the last Fire, or this is
// the first call.
func (c *Cycle) Ready(now time.Time) bool {
	if !c.armed {
		return true
	}
	return now.Sub(c.last) >= c.period
}

// Fire records now as the start of a new period. Call this exactly once
// per cycle that actually runs, not once per Ready poll.
func (c *Cycle) Fire(now time.Time) {
	c.last = now
	c.armed = true
}

// Period returns the configured cycle period.
func (c *Cycle) Period() time.Duration {
	return c.period
}

// Elapsed returns the time since the cycle last fired. Meaningless before
// the first Fire.
func (c *Cycle) Elapsed(now time.Time) time.Duration {
	return now.Sub(c.last)
}
