package mbtransport

import (
	"errors"
	"testing"
	"time"

	plc "github.com/AndreiLosev/plc"
	"github.com/AndreiLosev/plc/mbaction"
	"github.com/AndreiLosev/plc/regs"
	"github.com/simonvetter/modbus"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	holdings []uint16
	closed   bool
}

func (f *fakeClient) ReadCoils(addr, quantity uint16) ([]bool, error)          { return nil, nil }
func (f *fakeClient) ReadDiscreteInputs(addr, quantity uint16) ([]bool, error) { return nil, nil }
func (f *fakeClient) ReadRegisters(addr, quantity uint16, regType modbus.RegType) ([]uint16, error) {
	return f.holdings[addr : addr+quantity], nil
}
func (f *fakeClient) WriteCoil(addr uint16, value bool) error          { return nil }
func (f *fakeClient) WriteCoils(addr uint16, values []bool) error      { return nil }
func (f *fakeClient) WriteRegister(addr uint16, value uint16) error    { return nil }
func (f *fakeClient) WriteRegisters(addr uint16, values []uint16) error { return nil }

func TestTCPMasterStepRunsSweepAndCloses(t *testing.T) {
	bank := regs.NewBank(regs.Sizes{Holdings: 4})
	client := &fakeClient{holdings: []uint16{7, 8, 9}}

	handler := mbaction.ReadWordsHandler(func(bank *regs.Bank, values []uint16) error {
		return bank.SetHoldings(0, values)
	})
	action, err := mbaction.NewAction(mbaction.ReadHoldingRegisters, 0, 3, mbaction.NewCycleTrigger(time.Second), handler)
	require.NoError(t, err)

	m := &TCPMaster{
		name:    "test",
		actions: []*mbaction.Action{action},
		log:     plc.NoopLogger(),
		dial: func() (mbaction.ModbusClient, func() error, error) {
			return client, func() error { client.closed = true; return nil }, nil
		},
	}

	require.NoError(t, m.Step(bank))
	require.True(t, client.closed)

	got, err := bank.Holdings(0, 3)
	require.NoError(t, err)
	require.Equal(t, []uint16{7, 8, 9}, got)
}

func TestTCPMasterStepDialFailureIsModbusIoError(t *testing.T) {
	bank := regs.NewBank(regs.Sizes{})
	boom := errors.New("connection refused")

	m := &TCPMaster{
		name: "test",
		log:  plc.NoopLogger(),
		dial: func() (mbaction.ModbusClient, func() error, error) { return nil, nil, boom },
	}

	err := m.Step(bank)
	require.Error(t, err)
	var ioErr *plc.ModbusIoError
	require.ErrorAs(t, err, &ioErr)
	require.ErrorIs(t, err, boom)
}
