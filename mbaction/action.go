package mbaction

import (
	"fmt"
	"time"

	plc "github.com/AndreiLosev/plc"
	"github.com/AndreiLosev/plc/regs"
	"github.com/simonvetter/modbus"
)

// Kind identifies which Modbus function an Action performs. The original
// design paired every Kind with three separate trigger-specific
// constructors (24 in total); this collapses that into the single
// NewAction constructor below, which type-checks handler against kind at
// construction time instead.
type Kind int

const (
	ReadCoils Kind = iota
	ReadDiscreteInputs
	ReadHoldingRegisters
	ReadInputRegisters
	WriteCoil
	WriteCoils
	WriteHoldingRegister
	WriteHoldingRegisters
)

// ModbusClient is the subset of *modbus.ModbusClient an Action needs. It
// exists so tests can substitute a fake without standing up a real
// transport.
type ModbusClient interface {
	ReadCoils(addr, quantity uint16) ([]bool, error)
	ReadDiscreteInputs(addr, quantity uint16) ([]bool, error)
	ReadRegisters(addr, quantity uint16, regType modbus.RegType) ([]uint16, error)
	WriteCoil(addr uint16, value bool) error
	WriteCoils(addr uint16, values []bool) error
	WriteRegister(addr uint16, value uint16) error
	WriteRegisters(addr uint16, values []uint16) error
}

// Handler function shapes, one per Kind. Read handlers receive the values
// just fetched from the remote device and merge them into the local
// register bank; write handlers derive the values to send from the local
// register bank.
type (
	ReadBoolsHandler  func(bank *regs.Bank, values []bool) error
	ReadWordsHandler  func(bank *regs.Bank, values []uint16) error
	WriteBoolHandler  func(bank *regs.Bank) (bool, error)
	WriteBoolsHandler func(bank *regs.Bank) ([]bool, error)
	WriteWordHandler  func(bank *regs.Bank) (uint16, error)
	WriteWordsHandler func(bank *regs.Bank) ([]uint16, error)
)

// Action pairs a Modbus request against offset/count with a Trigger and a
// handler. Construct with NewAction.
type Action struct {
	Kind    Kind
	Offset  uint16
	Count   uint16
	Trigger Trigger
	handler any
}

// NewAction constructs an Action, validating that handler's concrete type
// matches the shape required by kind. The handler argument must be one of
// ReadBoolsHandler, ReadWordsHandler, WriteBoolHandler, WriteBoolsHandler,
// WriteWordHandler, or WriteWordsHandler, whichever corresponds to kind.
func NewAction(kind Kind, offset, count uint16, trigger Trigger, handler any) (*Action, error) {
	if err := checkHandlerShape(kind, handler); err != nil {
		return nil, err
	}
	return &Action{Kind: kind, Offset: offset, Count: count, Trigger: trigger, handler: handler}, nil
}

func checkHandlerShape(kind Kind, handler any) error {
	ok := false
	switch kind {
	case ReadCoils, ReadDiscreteInputs:
		_, ok = handler.(ReadBoolsHandler)
	case ReadHoldingRegisters, ReadInputRegisters:
		_, ok = handler.(ReadWordsHandler)
	case WriteCoil:
		_, ok = handler.(WriteBoolHandler)
	case WriteCoils:
		_, ok = handler.(WriteBoolsHandler)
	case WriteHoldingRegister:
		_, ok = handler.(WriteWordHandler)
	case WriteHoldingRegisters:
		_, ok = handler.(WriteWordsHandler)
	default:
		return &plc.TaskShapeError{Message: fmt.Sprintf("mbaction: unknown action kind %d", kind)}
	}
	if !ok {
		return &plc.TaskShapeError{Message: fmt.Sprintf("mbaction: handler type %T does not match action kind %d", handler, kind)}
	}
	return nil
}

// Ready reports whether the Action's Trigger is currently satisfied.
func (a *Action) Ready(now time.Time, bank *regs.Bank) (bool, error) {
	return a.Trigger.ready(now, bank)
}

// Execute performs the Modbus request and invokes the handler. Callers
// should only call Execute after Ready has reported true, and should call
// Trigger.fire(now) (via Sweep) once the request has actually run.
func (a *Action) Execute(bank *regs.Bank, client ModbusClient) error {
	switch a.Kind {
	case ReadCoils:
		values, err := client.ReadCoils(a.Offset, a.Count)
		if err != nil {
			return err
		}
		return a.handler.(ReadBoolsHandler)(bank, values)

	case ReadDiscreteInputs:
		values, err := client.ReadDiscreteInputs(a.Offset, a.Count)
		if err != nil {
			return err
		}
		return a.handler.(ReadBoolsHandler)(bank, values)

	case ReadHoldingRegisters:
		values, err := client.ReadRegisters(a.Offset, a.Count, modbus.HOLDING_REGISTER)
		if err != nil {
			return err
		}
		return a.handler.(ReadWordsHandler)(bank, values)

	case ReadInputRegisters:
		values, err := client.ReadRegisters(a.Offset, a.Count, modbus.INPUT_REGISTER)
		if err != nil {
			return err
		}
		return a.handler.(ReadWordsHandler)(bank, values)

	case WriteCoil:
		value, err := a.handler.(WriteBoolHandler)(bank)
		if err != nil {
			return err
		}
		return client.WriteCoil(a.Offset, value)

	case WriteCoils:
		values, err := a.handler.(WriteBoolsHandler)(bank)
		if err != nil {
			return err
		}
		return client.WriteCoils(a.Offset, values)

	case WriteHoldingRegister:
		value, err := a.handler.(WriteWordHandler)(bank)
		if err != nil {
			return err
		}
		return client.WriteRegister(a.Offset, value)

	case WriteHoldingRegisters:
		values, err := a.handler.(WriteWordsHandler)(bank)
		if err != nil {
			return err
		}
		return client.WriteRegisters(a.Offset, values)

	default:
		return fmt.Errorf("mbaction: unknown action kind %d", a.Kind)
	}
}
