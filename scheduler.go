package plc

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/AndreiLosev/plc/regs"
)

// Plc is the scheduler: a single-threaded, non-preemptive, cooperative
// runner over a fixed set of Tasks sharing one register bank.
//
// Tasks not currently executing live in one of two pools — eventPool for
// cyclic/edge-triggered tasks, backgroundPool for background ones — and
// are promoted onto callStack once ready. Only callStack's head is ever
// stepped, one program at a time; a task returns to the pool it came from
// once its whole program chain has run (or aborted).
type Plc struct {
	eventPool      []*Task
	backgroundPool []*Task
	callStack      []*Task
	bank           *regs.Bank
	opts           *plcOptions
}

// New constructs a Plc over tasks and bank. At least one task is required.
func New(tasks []*Task, bank *regs.Bank, opts ...Option) (*Plc, error) {
	if len(tasks) == 0 {
		return nil, &TaskShapeError{Message: "plc requires at least one task"}
	}
	if bank == nil {
		return nil, &TaskShapeError{Message: "plc requires a register bank"}
	}

	o, err := resolvePlcOptions(opts)
	if err != nil {
		return nil, err
	}

	p := &Plc{bank: bank, opts: o}
	for _, task := range tasks {
		if task.class() == classBackground {
			p.backgroundPool = append(p.backgroundPool, task)
		} else {
			p.eventPool = append(p.eventPool, task)
		}
	}
	sort.SliceStable(p.backgroundPool, func(i, j int) bool {
		return taskLess(p.backgroundPool[i], p.backgroundPool[j])
	})

	return p, nil
}

// Run executes the scheduler loop until ctx is cancelled. Under normal
// operation (context.Background()) it does not return.
func (p *Plc) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if ranAny := p.tick(); !ranAny && p.opts.idleSleep > 0 {
			time.Sleep(p.opts.idleSleep)
		}
	}
}

// tick promotes ready tasks onto the call stack, then steps exactly one
// program belonging to the single task at its head. It reports whether
// any work happened, so Run can back off when the scheduler is fully
// idle.
func (p *Plc) tick() bool {
	now := p.opts.now()

	kept := p.eventPool[:0]
	for _, task := range p.eventPool {
		ready, err := task.isReady(now, p.bank)
		if err != nil {
			logTolerated(p.opts.logger, "scheduler", task.Name(), err)
			kept = append(kept, task)
			continue
		}
		if ready {
			p.callStack = append(p.callStack, task)
		} else {
			kept = append(kept, task)
		}
	}
	p.eventPool = kept

	if len(p.callStack) == 0 && len(p.backgroundPool) > 0 {
		task := p.backgroundPool[0]
		p.backgroundPool = p.backgroundPool[1:]
		p.callStack = append(p.callStack, task)
	}

	if len(p.callStack) == 0 {
		return false
	}

	sort.SliceStable(p.callStack, func(i, j int) bool {
		return taskLess(p.callStack[i], p.callStack[j])
	})

	head := p.callStack[0]
	done, err := head.step(now, p.bank, p.opts.now, p.opts.maxWorkTimeForNotCycleTask)
	if err != nil {
		var timeoutErr *TaskTimeoutError
		if errors.As(err, &timeoutErr) {
			logTimeout(p.opts.logger, head.Name(), head.event.deadline(), p.opts.now().Sub(now))
		} else {
			logTolerated(p.opts.logger, "scheduler", head.Name(), err)
		}
	}

	if done {
		p.callStack = p.callStack[1:]
		if head.class() == classBackground {
			p.backgroundPool = append(p.backgroundPool, head)
		} else {
			p.eventPool = append(p.eventPool, head)
		}
	}

	return true
}

// Tasks returns every task currently known to the scheduler, across both
// pools and the call stack, in unspecified order. Exposed for diagnostics
// and tests; callers must not mutate the returned slice.
func (p *Plc) Tasks() []*Task {
	all := make([]*Task, 0, len(p.eventPool)+len(p.backgroundPool)+len(p.callStack))
	all = append(all, p.eventPool...)
	all = append(all, p.backgroundPool...)
	all = append(all, p.callStack...)
	return all
}
