package mbtransport

import (
	"sync"

	plc "github.com/AndreiLosev/plc"
	"github.com/AndreiLosev/plc/regs"
	"github.com/simonvetter/modbus"
)

// faultRecorder wraps a *regs.Bank as a modbus.RequestHandler, recording
// (but still returning, so the wire-level exception response is
// unaffected) every error a request handler call produces, so the
// scheduler-stepped Slave adapters can surface it on their next Step
// without blocking the async server goroutine that actually saw it.
type faultRecorder struct {
	bank *regs.Bank
	mu   sync.Mutex
	last error
}

func newFaultRecorder(bank *regs.Bank) *faultRecorder {
	return &faultRecorder{bank: bank}
}

func (f *faultRecorder) record(err error) error {
	if err != nil {
		f.mu.Lock()
		f.last = err
		f.mu.Unlock()
	}
	return err
}

// drain returns and clears the last recorded fault, or nil if there was
// none.
func (f *faultRecorder) drain() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.last
	f.last = nil
	return err
}

func (f *faultRecorder) HandleCoils(req *modbus.CoilsRequest) ([]bool, error) {
	res, err := f.bank.HandleCoils(req)
	return res, f.record(err)
}

func (f *faultRecorder) HandleDiscreteInputs(req *modbus.DiscreteInputsRequest) ([]bool, error) {
	res, err := f.bank.HandleDiscreteInputs(req)
	return res, f.record(err)
}

func (f *faultRecorder) HandleHoldingRegisters(req *modbus.HoldingRegistersRequest) ([]uint16, error) {
	res, err := f.bank.HandleHoldingRegisters(req)
	return res, f.record(err)
}

func (f *faultRecorder) HandleInputRegisters(req *modbus.InputRegistersRequest) ([]uint16, error) {
	res, err := f.bank.HandleInputRegisters(req)
	return res, f.record(err)
}

// TCPSlave is a plc.Program adapting simonvetter/modbus's asynchronous
// TCP server to the scheduler's cooperative step model.
//
// simonvetter/modbus.Server owns its own accept loop once Start is
// called; it does not offer a "handle at most one pending connection"
// primitive to step explicitly. Rather than re-implement MBAP framing and
// connection accounting by hand to get that property back, Step starts
// the server exactly once (on the first call) and thereafter performs a
// cheap poll of the request handler's recorded faults, so handler-side
// errors still reach the scheduler's tolerated-error log on the next
// tick, without blocking the scheduler goroutine on network I/O.
type TCPSlave struct {
	url        string
	maxClients uint

	once     sync.Once
	server   *modbus.ModbusServer
	fault    *faultRecorder
	startErr error
}

// NewTCPSlave constructs a TCPSlave listening on addr (for example
// "tcp://0.0.0.0:502").
func NewTCPSlave(addr string, maxClients uint) *TCPSlave {
	return &TCPSlave{url: addr, maxClients: maxClients}
}

func (s *TCPSlave) Step(bank *regs.Bank) error {
	s.once.Do(func() {
		s.fault = newFaultRecorder(bank)
		server, err := modbus.NewServer(&modbus.ServerConfiguration{
			URL:        s.url,
			MaxClients: s.maxClients,
		}, s.fault)
		if err != nil {
			s.startErr = &plc.ModbusIoError{Cause: err}
			return
		}
		s.server = server
		if err := server.Start(); err != nil {
			s.startErr = &plc.ModbusIoError{Cause: err}
		}
	})
	if s.startErr != nil {
		return s.startErr
	}
	if err := s.fault.drain(); err != nil {
		return &plc.ModbusIoError{Cause: err}
	}
	return nil
}

// Close stops the underlying server, if it was started.
func (s *TCPSlave) Close() error {
	if s.server == nil {
		return nil
	}
	return s.server.Stop()
}
