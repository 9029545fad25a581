package plc

import "fmt"

// RegisterAccessError describes an access to a coil, discrete input,
// holding register, or input register outside the bounds of the configured
// register bank. No function in this module returns it: the register bank
// reports such accesses as *regs.OutOfRangeError, which programs and
// actions pass on unchanged.
type RegisterAccessError struct {
	Cause   error
	Message string
}

func (e *RegisterAccessError) Error() string {
	if e.Message == "" {
		return "register access error"
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *RegisterAccessError) Unwrap() error {
	return e.Cause
}

// TaskTimeoutError is returned when a task's program chain fails to reach
// completion within its deadline: a cyclic task's period, or, for
// background and edge-triggered tasks, the scheduler's fallback deadline
// (see WithMaxWorkTimeForNotCycleTask).
type TaskTimeoutError struct {
	Task   string
	Cause  error
	Period string
}

func (e *TaskTimeoutError) Error() string {
	if e.Period == "" {
		return fmt.Sprintf("task %q exceeded its cycle period", e.Task)
	}
	return fmt.Sprintf("task %q exceeded its cycle period of %s", e.Task, e.Period)
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *TaskTimeoutError) Unwrap() error {
	return e.Cause
}

// TaskShapeError is returned when a task, scheduler, or action is
// misconfigured: at construction for an empty program list, an empty task
// list, or a handler whose signature does not match the action kind it was
// registered against, and while stepping for a program cursor out of range.
type TaskShapeError struct {
	Task    string
	Message string
}

func (e *TaskShapeError) Error() string {
	if e.Task == "" {
		return e.Message
	}
	return fmt.Sprintf("task %q: %s", e.Task, e.Message)
}

// ConfigInvalidError is returned when the general configuration file fails
// to parse or fails validation.
type ConfigInvalidError struct {
	Path  string
	Cause error
}

func (e *ConfigInvalidError) Error() string {
	return fmt.Sprintf("invalid configuration %q: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *ConfigInvalidError) Unwrap() error {
	return e.Cause
}

// ModbusIoError wraps a failure observed while executing Modbus actions or
// servicing a Modbus slave role: a failed connect, a non-timeout error
// that aborted a master sweep (including exception responses and handler
// errors), or a fault recorded by the slave's request handler. It is
// returned from the adapter's Step, so the scheduler logs it and ends the
// owning task's current run like any other program error. Timeouts of
// individual actions are skipped inside the sweep and never produce one.
type ModbusIoError struct {
	Cause error
}

func (e *ModbusIoError) Error() string {
	return fmt.Sprintf("modbus i/o: %v", e.Cause)
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *ModbusIoError) Unwrap() error {
	return e.Cause
}

// ModbusProtocolError wraps a well-formed Modbus exception response
// (illegal function, illegal data address, illegal data value, and so on)
// returned by a remote device. The mbtransport adapters do not return it;
// they report exception responses wrapped in ModbusIoError.
type ModbusProtocolError struct {
	Cause error
}

func (e *ModbusProtocolError) Error() string {
	return fmt.Sprintf("modbus protocol: %v", e.Cause)
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *ModbusProtocolError) Unwrap() error {
	return e.Cause
}

// WrapError wraps an error with a message, preserving it as the %w cause
// so that errors.Is and errors.As continue to match the original error.
func WrapError(message string, cause error) error {
	return fmt.Errorf("%s: %w", message, cause)
}
