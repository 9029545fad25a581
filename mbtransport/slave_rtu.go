package mbtransport

import (
	"sync"

	plc "github.com/AndreiLosev/plc"
	"github.com/AndreiLosev/plc/regs"
	"github.com/simonvetter/modbus"
)

// RTUSlave is the serial counterpart of TCPSlave: simonvetter/modbus
// serves RTU frames over a serial port the same way it serves TCP
// connections, through the same asynchronous Server, started once and
// thereafter polled for handler-side faults on each Step. See TCPSlave's
// doc comment for why this is a deliberate deviation from a literal
// single-frame-per-step model rather than an oversight.
type RTUSlave struct {
	device   string
	speed    uint
	dataBits uint
	parity   uint
	stopBits uint

	once     sync.Once
	server   *modbus.ModbusServer
	fault    *faultRecorder
	startErr error
}

// NewRTUSlave constructs an RTUSlave against a local serial device.
func NewRTUSlave(device string, speed uint) *RTUSlave {
	return &RTUSlave{device: device, speed: speed, dataBits: 8, parity: modbus.PARITY_NONE, stopBits: 1}
}

func (s *RTUSlave) Step(bank *regs.Bank) error {
	s.once.Do(func() {
		s.fault = newFaultRecorder(bank)
		server, err := modbus.NewServer(&modbus.ServerConfiguration{
			URL:      "rtu://" + s.device,
			Speed:    s.speed,
			DataBits: s.dataBits,
			Parity:   s.parity,
			StopBits: s.stopBits,
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
func (s *RTUSlave) Close() error {
	if s.server == nil {
		return nil
	}
	return s.server.Stop()
}
