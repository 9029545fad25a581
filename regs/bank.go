// Package regs implements the shared register context every task and
// Modbus action reads and writes through: coils, discrete inputs, holding
// registers, and input registers, addressed and bounds-checked the way the
// Modbus data model requires.
package regs

import (
	"fmt"

	"github.com/simonvetter/modbus"
)

// Sizes configures the number of addressable points of each register type
// a Bank holds, starting at address zero.
type Sizes struct {
	Coils     uint16
	Discretes uint16
	Holdings  uint16
	Inputs    uint16
}

// OutOfRangeError reports an access outside the configured bounds of a
// register bank.
type OutOfRangeError struct {
	Kind     string
	Addr     uint16
	Quantity uint16
	Size     uint16
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s: address %d (quantity %d) out of range [0, %d)", e.Kind, e.Addr, e.Quantity, e.Size)
}

// Bank is a fixed-size, bounds-checked register context covering all four
// Modbus register kinds. It is not safe for concurrent use without an
// external lock — the scheduler only ever touches it from the single
// goroutine running Plc.Run, and the simonvetter/modbus server it backs as
// a RequestHandler is driven from the same cooperative step (see
// mbtransport.TCPSlave / RTUSlave), so no internal locking is needed.
type Bank struct {
	coils     []bool
	discretes []bool
	holdings  []uint16
	inputs    []uint16
}

// NewBank allocates a Bank with the given Sizes, zero-initialized.
func NewBank(sizes Sizes) *Bank {
	return &Bank{
		coils:     make([]bool, sizes.Coils),
		discretes: make([]bool, sizes.Discretes),
		holdings:  make([]uint16, sizes.Holdings),
		inputs:    make([]uint16, sizes.Inputs),
	}
}

// --- single-point access ---

func (b *Bank) Coil(addr uint16) (bool, error) {
	if int(addr) >= len(b.coils) {
		return false, &OutOfRangeError{Kind: "coil", Addr: addr, Quantity: 1, Size: uint16(len(b.coils))}
	}
	return b.coils[addr], nil
}

func (b *Bank) SetCoil(addr uint16, v bool) error {
	if int(addr) >= len(b.coils) {
		return &OutOfRangeError{Kind: "coil", Addr: addr, Quantity: 1, Size: uint16(len(b.coils))}
	}
	b.coils[addr] = v
	return nil
}

func (b *Bank) Discrete(addr uint16) (bool, error) {
	if int(addr) >= len(b.discretes) {
		return false, &OutOfRangeError{Kind: "discrete input", Addr: addr, Quantity: 1, Size: uint16(len(b.discretes))}
	}
	return b.discretes[addr], nil
}

func (b *Bank) SetDiscrete(addr uint16, v bool) error {
	if int(addr) >= len(b.discretes) {
		return &OutOfRangeError{Kind: "discrete input", Addr: addr, Quantity: 1, Size: uint16(len(b.discretes))}
	}
	b.discretes[addr] = v
	return nil
}

func (b *Bank) Holding(addr uint16) (uint16, error) {
	if int(addr) >= len(b.holdings) {
		return 0, &OutOfRangeError{Kind: "holding register", Addr: addr, Quantity: 1, Size: uint16(len(b.holdings))}
	}
	return b.holdings[addr], nil
}

func (b *Bank) SetHolding(addr uint16, v uint16) error {
	if int(addr) >= len(b.holdings) {
		return &OutOfRangeError{Kind: "holding register", Addr: addr, Quantity: 1, Size: uint16(len(b.holdings))}
	}
	b.holdings[addr] = v
	return nil
}

func (b *Bank) Input(addr uint16) (uint16, error) {
	if int(addr) >= len(b.inputs) {
		return 0, &OutOfRangeError{Kind: "input register", Addr: addr, Quantity: 1, Size: uint16(len(b.inputs))}
	}
	return b.inputs[addr], nil
}

func (b *Bank) SetInput(addr uint16, v uint16) error {
	if int(addr) >= len(b.inputs) {
		return &OutOfRangeError{Kind: "input register", Addr: addr, Quantity: 1, Size: uint16(len(b.inputs))}
	}
	b.inputs[addr] = v
	return nil
}

// --- bulk (range) access, used by actions and the slave request handler ---

func (b *Bank) Coils(addr, quantity uint16) ([]bool, error) {
	if int(addr)+int(quantity) > len(b.coils) {
		return nil, &OutOfRangeError{Kind: "coil", Addr: addr, Quantity: quantity, Size: uint16(len(b.coils))}
	}
	out := make([]bool, quantity)
	copy(out, b.coils[addr:int(addr)+int(quantity)])
	return out, nil
}

func (b *Bank) SetCoils(addr uint16, values []bool) error {
	if int(addr)+len(values) > len(b.coils) {
		return &OutOfRangeError{Kind: "coil", Addr: addr, Quantity: uint16(len(values)), Size: uint16(len(b.coils))}
	}
	copy(b.coils[addr:], values)
	return nil
}

func (b *Bank) Discretes(addr, quantity uint16) ([]bool, error) {
	if int(addr)+int(quantity) > len(b.discretes) {
		return nil, &OutOfRangeError{Kind: "discrete input", Addr: addr, Quantity: quantity, Size: uint16(len(b.discretes))}
	}
	out := make([]bool, quantity)
	copy(out, b.discretes[addr:int(addr)+int(quantity)])
	return out, nil
}

func (b *Bank) Holdings(addr, quantity uint16) ([]uint16, error) {
	if int(addr)+int(quantity) > len(b.holdings) {
		return nil, &OutOfRangeError{Kind: "holding register", Addr: addr, Quantity: quantity, Size: uint16(len(b.holdings))}
	}
	out := make([]uint16, quantity)
	copy(out, b.holdings[addr:int(addr)+int(quantity)])
	return out, nil
}

func (b *Bank) SetHoldings(addr uint16, values []uint16) error {
	if int(addr)+len(values) > len(b.holdings) {
		return &OutOfRangeError{Kind: "holding register", Addr: addr, Quantity: uint16(len(values)), Size: uint16(len(b.holdings))}
	}
	copy(b.holdings[addr:], values)
	return nil
}

func (b *Bank) Inputs(addr, quantity uint16) ([]uint16, error) {
	if int(addr)+int(quantity) > len(b.inputs) {
		return nil, &OutOfRangeError{Kind: "input register", Addr: addr, Quantity: quantity, Size: uint16(len(b.inputs))}
	}
	out := make([]uint16, quantity)
	copy(out, b.inputs[addr:int(addr)+int(quantity)])
	return out, nil
}

// --- u32/u64-as-registers conveniences ---
//
// Wider values are carried across two or four consecutive holding
// registers, big-endian (most significant word first), the common
// wire convention for multi-register Modbus values.

// Uint32 reads the 32-bit big-endian value spanning holding registers
// addr and addr+1.
func (b *Bank) Uint32(addr uint16) (uint32, error) {
	words, err := b.Holdings(addr, 2)
	if err != nil {
		return 0, err
	}
	return uint32(words[0])<<16 | uint32(words[1]), nil
}

// SetUint32 writes v across holding registers addr and addr+1,
// big-endian.
func (b *Bank) SetUint32(addr uint16, v uint32) error {
	return b.SetHoldings(addr, []uint16{uint16(v >> 16), uint16(v)})
}

// Uint64 reads the 64-bit big-endian value spanning holding registers
// addr through addr+3.
func (b *Bank) Uint64(addr uint16) (uint64, error) {
	words, err := b.Holdings(addr, 4)
	if err != nil {
		return 0, err
	}
	return uint64(words[0])<<48 | uint64(words[1])<<32 | uint64(words[2])<<16 | uint64(words[3]), nil
}

// SetUint64 writes v across holding registers addr through addr+3,
// big-endian.
func (b *Bank) SetUint64(addr uint16, v uint64) error {
	return b.SetHoldings(addr, []uint16{
		uint16(v >> 48), uint16(v >> 32), uint16(v >> 16), uint16(v),
	})
}

// --- simonvetter/modbus.RequestHandler ---
//
// Bank stands in directly as the slave role's request handler: the
// scheduler-owned register context backs Modbus slave responses with no
// intermediate copy.

var (
	_ modbus.RequestHandler = (*Bank)(nil)
)

func (b *Bank) HandleCoils(req *modbus.CoilsRequest) ([]bool, error) {
	if req.IsWrite {
		return nil, b.SetCoils(req.Addr, req.Args)
	}
	return b.Coils(req.Addr, req.Quantity)
}

func (b *Bank) HandleDiscreteInputs(req *modbus.DiscreteInputsRequest) ([]bool, error) {
	return b.Discretes(req.Addr, req.Quantity)
}

func (b *Bank) HandleHoldingRegisters(req *modbus.HoldingRegistersRequest) ([]uint16, error) {
	if req.IsWrite {
		return nil, b.SetHoldings(req.Addr, req.Args)
	}
	return b.Holdings(req.Addr, req.Quantity)
}

func (b *Bank) HandleInputRegisters(req *modbus.InputRegistersRequest) ([]uint16, error) {
	return b.Inputs(req.Addr, req.Quantity)
}
