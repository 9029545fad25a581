// Package mbaction implements the Modbus action engine: read/write
// requests against a remote device, gated by the same cyclic/edge trigger
// semantics used by task Events, and driven from a task's Program chain.
package mbaction

import (
	"time"

	"github.com/AndreiLosev/plc/internal/trig"
	"github.com/AndreiLosev/plc/regs"
)

type triggerKind int

const (
	triggerCycle triggerKind = iota
	triggerFrontCoil
	triggerFrontDiscrete
)

// Trigger is the fire condition attached to an Action: a fixed period, or
// a rising edge on a local coil or discrete input. It shares its
// underlying edge/cycle primitives with plc.Event (via internal/trig),
// since the semantics are identical.
type Trigger struct {
	kind  triggerKind
	cycle *trig.Cycle
	edge  *trig.Edge
	addr  uint16
}

// NewCycleTrigger fires at most once per period.
func NewCycleTrigger(period time.Duration) Trigger {
	return Trigger{kind: triggerCycle, cycle: trig.NewCycle(period)}
}

// NewFrontCoilTrigger fires once on a rising edge of the local coil addr.
func NewFrontCoilTrigger(addr uint16) Trigger {
	return Trigger{kind: triggerFrontCoil, edge: new(trig.Edge), addr: addr}
}

// NewFrontDiscreteTrigger fires once on a rising edge of the local
// discrete input addr.
func NewFrontDiscreteTrigger(addr uint16) Trigger {
	return Trigger{kind: triggerFrontDiscrete, edge: new(trig.Edge), addr: addr}
}

func (tr *Trigger) ready(now time.Time, bank *regs.Bank) (bool, error) {
	switch tr.kind {
	case triggerCycle:
		return tr.cycle.Ready(now), nil
	case triggerFrontCoil:
		bit, err := bank.Coil(tr.addr)
		if err != nil {
			return false, err
		}
		return tr.edge.Sample(bit), nil
	case triggerFrontDiscrete:
		bit, err := bank.Discrete(tr.addr)
		if err != nil {
			return false, err
		}
		return tr.edge.Sample(bit), nil
	default:
		return false, nil
	}
}

func (tr *Trigger) fire(now time.Time) {
	if tr.kind == triggerCycle {
		tr.cycle.Fire(now)
	}
}
