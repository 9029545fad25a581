package mbaction

import (
	"errors"
	"net"
	"time"

	"github.com/AndreiLosev/plc/regs"
	"github.com/simonvetter/modbus"
)

// Sweep runs every ready Action in actions, in order, against client and
// bank. Transport-level timeouts are logged (via the caller-supplied log
// function) and skipped, matching the original master adapter's
// connect-per-sweep design: a timed-out device this sweep is simply tried
// again next sweep. An error evaluating an Action's Trigger (for example an
// out-of-range local address) is also passed to onSkip and that Action is
// skipped. Any other error from executing an Action aborts the sweep
// immediately and is returned, since it likely indicates a connection-level
// fault the caller should react to (for example by closing and reopening
// the client).
func Sweep(actions []*Action, bank *regs.Bank, client ModbusClient, now time.Time, onSkip func(a *Action, err error)) error {
	for _, a := range actions {
		ready, err := a.Ready(now, bank)
		if err != nil {
			if onSkip != nil {
				onSkip(a, err)
			}
			continue
		}
		if !ready {
			continue
		}

		if err := a.Execute(bank, client); err != nil {
			if isTimeout(err) {
				if onSkip != nil {
					onSkip(a, err)
				}
				continue
			}
			return err
		}

		a.Trigger.fire(now)
	}
	return nil
}

// isTimeout reports whether err represents a transport-level timeout
// (the wire library's own request-timeout sentinel, or a raw
// connection/read/write deadline exceeded) rather than a well-formed
// Modbus protocol exception.
func isTimeout(err error) bool {
	if errors.Is(err, modbus.ErrRequestTimedOut) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
