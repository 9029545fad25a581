// Package mbtransport carries the Modbus master and slave roles over TCP
// and serial (RTU), backed by github.com/simonvetter/modbus, and wired
// into the scheduler as plc.Program implementations.
package mbtransport

import (
	"time"

	plc "github.com/AndreiLosev/plc"
	"github.com/AndreiLosev/plc/mbaction"
	"github.com/AndreiLosev/plc/regs"
	"github.com/simonvetter/modbus"
)

// dialer opens a Modbus client connection and returns it alongside a
// close function. Abstracted so tests can substitute a fake client
// without a real transport; NewTCPMaster and NewRTUMaster build one over a
// simonvetter/modbus client.
type dialer func() (mbaction.ModbusClient, func() error, error)

// TCPMaster is a plc.Program that, each time it steps, opens a fresh
// Modbus TCP client, runs every ready Action in its sweep, and closes the
// connection again.
//
// This connect-per-sweep pattern is deliberate, not an oversight: a
// device that is unreachable this sweep is retried next sweep at the
// scheduler's own cadence, with no separate reconnect/backoff state
// machine required. The cost is a fresh TCP handshake every sweep, which
// is acceptable at PLC cycle rates against local field devices.
type TCPMaster struct {
	dial    dialer
	actions []*mbaction.Action
	log     *plc.Logger
	name    string
}

// NewTCPMaster constructs a TCPMaster dialing addr (for example
// "tcp://192.0.2.10:502") with the given per-request timeout.
func NewTCPMaster(name, addr string, timeout time.Duration, actions []*mbaction.Action, log *plc.Logger) *TCPMaster {
	if log == nil {
		log = plc.NoopLogger()
	}
	dial := func() (mbaction.ModbusClient, func() error, error) {
		client, err := modbus.NewClient(&modbus.ClientConfiguration{URL: addr, Timeout: timeout})
		if err != nil {
			return nil, nil, err
		}
		if err := client.Open(); err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	}
	return &TCPMaster{name: name, dial: dial, actions: actions, log: log}
}

func (m *TCPMaster) Step(bank *regs.Bank) error {
	return runSweep(m.dial, m.actions, bank, m.log, m.name)
}

// runSweep implements the connect, sweep, close cycle shared by TCPMaster
// and RTUMaster.
func runSweep(dial dialer, actions []*mbaction.Action, bank *regs.Bank, log *plc.Logger, name string) error {
	client, close_, err := dial()
	if err != nil {
		return &plc.ModbusIoError{Cause: err}
	}
	defer close_()

	now := time.Now()
	if err := mbaction.Sweep(actions, bank, client, now, func(a *mbaction.Action, err error) {
		log.Warning().Str("master", name).Int("kind", int(a.Kind)).Err(err).Log("action skipped")
	}); err != nil {
		return &plc.ModbusIoError{Cause: err}
	}
	return nil
}
