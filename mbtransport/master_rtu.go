package mbtransport

import (
	"time"

	plc "github.com/AndreiLosev/plc"
	"github.com/AndreiLosev/plc/mbaction"
	"github.com/AndreiLosev/plc/regs"
	"github.com/simonvetter/modbus"
)

// settleDelay is how long RTUMaster waits after opening the serial port
// before running its sweep, giving the line time to settle after the
// previous sweep's close.
const settleDelay = 50 * time.Millisecond

// RTUMaster is the serial counterpart of TCPMaster: each step opens the
// serial port fresh, waits settleDelay, runs the sweep, and closes it.
type RTUMaster struct {
	dial    dialer
	actions []*mbaction.Action
	log     *plc.Logger
	name    string
}

// NewRTUMaster constructs an RTUMaster against a local serial device, for
// example "/dev/ttyUSB0".
func NewRTUMaster(name, device string, speed uint, timeout time.Duration, actions []*mbaction.Action, log *plc.Logger) *RTUMaster {
	if log == nil {
		log = plc.NoopLogger()
	}
	dial := func() (mbaction.ModbusClient, func() error, error) {
		client, err := modbus.NewClient(&modbus.ClientConfiguration{
			URL:      "rtu://" + device,
			Speed:    speed,
			DataBits: 8,
			Parity:   modbus.PARITY_NONE,
			StopBits: 1,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := client.Open(); err != nil {
			return nil, nil, err
		}
		time.Sleep(settleDelay)
		return client, client.Close, nil
	}
	return &RTUMaster{name: name, dial: dial, actions: actions, log: log}
}

func (m *RTUMaster) Step(bank *regs.Bank) error {
	return runSweep(m.dial, m.actions, bank, m.log, m.name)
}
