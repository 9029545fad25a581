// Package plc provides a cooperative, non-preemptive task scheduler for
// soft-real-time programmable logic controller (PLC) programs, together
// with a Modbus action engine for driving remote I/O from inside those
// programs.
//
// # Architecture
//
// The scheduler is built around a [Plc] core that owns a shared [regs.Bank]
// register context and a set of [Task] values grouped by [Event] kind:
// cyclic (time-driven), edge-triggered (bit front on a coil or discrete
// input), and background (always lowest priority, promoted only when
// nothing else is ready). Tasks not currently running live in an event
// pool or a background pool; a ready task is promoted onto the call stack,
// which is re-sorted by (event class, priority) using a stable sort every
// tick. Only the single task at the head of the call stack is stepped —
// by exactly one program — each tick; a task returns to its pool once its
// whole program chain has run (or aborted).
//
// Remote I/O is modeled the same way: an [mbaction.Action] pairs a Modbus
// read or write with a trigger ([mbaction.Trigger]) that fires on a cycle
// or a rising edge, sharing the same edge/cycle primitives as Task. Master
// and slave roles are carried by the mbtransport package, backed by
// github.com/simonvetter/modbus over TCP and serial (RTU).
//
// # Execution Model
//
// Plc is single-threaded and non-preemptive: a tick steps at most one
// program, belonging to whichever task sits at the head of the call
// stack, and no other task's program runs until the scheduler considers
// the next tick. There is no pre-emption, no hard real-time deadline
// enforcement, and no parallel execution of programs. Call-stack ordering
// within each tick is:
//
//  1. Cyclic and edge-triggered tasks, ordered by ascending priority
//  2. Background tasks, ordered by ascending priority (promoted one at a
//     time, only when the call stack would otherwise be empty)
//
// Ties within a class preserve insertion order (the sort is stable).
//
// # Usage
//
//	bank := regs.NewBank(regs.Sizes{Coils: 64, Discretes: 64, Holdings: 64, Inputs: 64})
//	poll, err := plc.NewCycleTask("poll", []plc.Program{prog}, 10, 100*time.Millisecond)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sched, err := plc.New([]*plc.Task{poll}, bank, plc.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := sched.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Error Types
//
// The package provides a small error taxonomy distinguishing what the
// scheduler tolerates from what it cannot:
//   - [TaskShapeError]: a construction-time misconfiguration (empty program
//     list, mismatched action handler)
//   - [TaskTimeoutError]: a task exceeded its cycle period or the
//     scheduler's fallback deadline
//   - [RegisterAccessError]: describes an out-of-bounds register access;
//     the register bank itself reports these as regs.OutOfRangeError
//   - [ModbusIoError]: transport and protocol failures from Modbus actions
//     and slave roles; [ModbusProtocolError] describes an exception
//     response but is not returned by the mbtransport adapters
//   - [ConfigInvalidError]: the general configuration file failed to parse
//
// All error types implement the standard [error] interface and
// [errors.Unwrap] for use with errors.Is and errors.As.
package plc
