package plc

import (
	"time"

	"github.com/AndreiLosev/plc/internal/trig"
	"github.com/AndreiLosev/plc/regs"
)

// BitSource identifies which register table a bit-front Event samples.
type BitSource int

const (
	// SourceDiscreteInput samples a read-only discrete input.
	SourceDiscreteInput BitSource = iota
	// SourceCoil samples a read/write coil.
	SourceCoil
)

type eventKind int

const (
	eventCycle eventKind = iota
	eventBitFront
	eventBackground
)

// classBackground and classDefault are the two sort classes assigned to
// Events: background tasks always sort after every cyclic and
// edge-triggered task, regardless of priority.
const (
	classDefault    = 1
	classBackground = 2
)

// Event is the trigger condition attached to a Task: time-driven (Cycle),
// edge-driven (BitFront on a coil or discrete input), or Background, which
// never reports ready itself and runs only when the scheduler promotes it.
type Event struct {
	kind   eventKind
	cycle  *trig.Cycle
	edge   *trig.Edge
	addr   uint16
	source BitSource
}

func newCycleEvent(period time.Duration) Event {
	return Event{kind: eventCycle, cycle: trig.NewCycle(period)}
}

func newBitFrontEvent(addr uint16, source BitSource) Event {
	return Event{kind: eventBitFront, edge: new(trig.Edge), addr: addr, source: source}
}

func newBackgroundEvent() Event {
	return Event{kind: eventBackground}
}

// class returns the scheduling class used to order the call stack:
// classDefault for cyclic and edge-triggered Events, classBackground for
// Background ones.
func (e *Event) class() int {
	if e.kind == eventBackground {
		return classBackground
	}
	return classDefault
}

// ready reports whether the Event's trigger condition is currently
// satisfied. For a Cycle event it does not consume the trigger: call fire
// once the owning Task has actually been selected to run this tick. A
// BitFront event advances its edge detector on every call, so a rising
// edge is reported only once.
//
// Background events always report false here: a background task is never
// promoted by its own trigger, only by the scheduler's pool logic choosing
// it when the call stack is otherwise idle.
func (e *Event) ready(now time.Time, bank *regs.Bank) (bool, error) {
	switch e.kind {
	case eventCycle:
		return e.cycle.Ready(now), nil
	case eventBitFront:
		var bit bool
		var err error
		if e.source == SourceCoil {
			bit, err = bank.Coil(e.addr)
		} else {
			bit, err = bank.Discrete(e.addr)
		}
		if err != nil {
			return false, err
		}
		return e.edge.Sample(bit), nil
	default: // eventBackground
		return false, nil
	}
}

// fire records that the owning Task has been selected to run this tick.
// Only Cycle events need this: it starts the next period's countdown.
func (e *Event) fire(now time.Time) {
	if e.kind == eventCycle {
		e.cycle.Fire(now)
	}
}

// deadline returns the duration within which the Task must complete for a
// Cycle event, or zero if the Event has no implicit deadline of its own
// (BitFront and Background events; Task.step then applies the scheduler's
// fallback deadline, if one is set).
func (e *Event) deadline() time.Duration {
	if e.kind == eventCycle {
		return e.cycle.Period()
	}
	return 0
}
