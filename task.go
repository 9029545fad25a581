package plc

import (
	"time"

	"github.com/AndreiLosev/plc/regs"
)

// Program is a single step of a Task's program chain. Step is called with
// the shared register bank and must not block: the scheduler is
// single-threaded and non-preemptive, so a blocking Program stalls every
// other task.
//
// The original design distinguished between programs needing an exclusive
// borrow of the register context and ones content with a shared one; Go's
// garbage-collected, single-owner slice semantics make that distinction
// unnecessary; every Program here takes the same *regs.Bank.
type Program interface {
	Step(bank *regs.Bank) error
}

// ProgramFunc adapts a plain function to the Program interface.
type ProgramFunc func(bank *regs.Bank) error

func (f ProgramFunc) Step(bank *regs.Bank) error { return f(bank) }

// Task is a named, prioritized unit of scheduling: a fixed sequence of
// Programs, gated by an Event (cyclic, edge-triggered, or background).
//
// A Task never runs its whole program chain in one call. Once promoted
// onto the scheduler's call stack it is stepped one program at a time,
// across as many scheduler ticks as it has programs, so that only the
// single head of the call stack ever does work in a given tick.
type Task struct {
	name     string
	programs []Program
	priority uint8
	event    Event

	cursor    int
	running   bool
	startedAt time.Time
}

// NewCycleTask constructs a Task that becomes ready once every period.
func NewCycleTask(name string, programs []Program, priority uint8, period time.Duration) (*Task, error) {
	return newTask(name, programs, priority, newCycleEvent(period))
}

// NewBitFrontTask constructs a Task that becomes ready on a rising edge of
// the coil or discrete input at addr.
func NewBitFrontTask(name string, programs []Program, priority uint8, addr uint16, source BitSource) (*Task, error) {
	return newTask(name, programs, priority, newBitFrontEvent(addr, source))
}

// NewBackgroundTask constructs a Task that never reports ready on its own:
// the scheduler promotes it only when the call stack is otherwise empty,
// and it always sorts after every cyclic and edge-triggered task
// regardless of priority.
func NewBackgroundTask(name string, programs []Program, priority uint8) (*Task, error) {
	return newTask(name, programs, priority, newBackgroundEvent())
}

func newTask(name string, programs []Program, priority uint8, event Event) (*Task, error) {
	if len(programs) == 0 {
		return nil, &TaskShapeError{Task: name, Message: "task has no programs"}
	}
	return &Task{name: name, programs: programs, priority: priority, event: event}, nil
}

// Name returns the task's configured name.
func (t *Task) Name() string { return t.name }

// Priority returns the task's configured priority. Lower values run first
// within a scheduling class.
func (t *Task) Priority() uint8 { return t.priority }

// isReady reports whether the task's Event is currently satisfied.
func (t *Task) isReady(now time.Time, bank *regs.Bank) (bool, error) {
	return t.event.ready(now, bank)
}

// step advances the task by exactly one program. It reports done=true once
// the task has either finished its full program chain or aborted (via a
// program error or a cycle overrun), at which point the caller must return
// it to the pool it was promoted from; done=false means the task stays at
// the head of the call stack for the next tick.
//
// now is the tick time the task was promoted (or first stepped) with; on
// the first step of a run it becomes startedAt and, for a Cycle event,
// fires the trigger so the next period's countdown starts from the moment
// the task actually began executing, not from when it last finished.
func (t *Task) step(now time.Time, bank *regs.Bank, clock func() time.Time, fallbackDeadline time.Duration) (done bool, err error) {
	if !t.running {
		t.event.fire(now)
		t.startedAt = now
		t.running = true
	}

	deadline := t.event.deadline()
	if deadline == 0 {
		deadline = fallbackDeadline
	}
	if deadline > 0 && clock().Sub(t.startedAt) > deadline {
		t.cursor = 0
		t.running = false
		return true, &TaskTimeoutError{Task: t.name, Period: deadline.String()}
	}

	if t.cursor < 0 || t.cursor >= len(t.programs) {
		t.cursor = 0
		t.running = false
		return true, &TaskShapeError{Task: t.name, Message: "program cursor out of range"}
	}

	if err := t.programs[t.cursor].Step(bank); err != nil {
		t.cursor = 0
		t.running = false
		return true, err
	}

	t.cursor++
	if t.cursor >= len(t.programs) {
		t.cursor = 0
		t.running = false
		return true, nil
	}
	return false, nil
}

// class returns the task's scheduling class (classDefault or
// classBackground), used by the call-stack sort.
func (t *Task) class() int { return t.event.class() }

// taskLess implements the call-stack ordering: scheduling class first
// (cyclic/edge-triggered before background), then priority ascending.
// Used with sort.SliceStable so that ties preserve insertion order.
func taskLess(a, b *Task) bool {
	ca, cb := a.class(), b.class()
	if ca != cb {
		return ca < cb
	}
	return a.priority < b.priority
}
