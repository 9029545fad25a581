package mbaction

import (
	"errors"
	"testing"
	"time"

	"github.com/AndreiLosev/plc/regs"
	"github.com/simonvetter/modbus"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	coils     []bool
	discretes []bool
	holdings  []uint16
	inputs    []uint16
	writes    []any
	err       error
}

func (f *fakeClient) ReadCoils(addr, quantity uint16) ([]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.coils[addr : addr+quantity], nil
}

func (f *fakeClient) ReadDiscreteInputs(addr, quantity uint16) ([]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.discretes[addr : addr+quantity], nil
}

func (f *fakeClient) ReadRegisters(addr, quantity uint16, regType modbus.RegType) ([]uint16, error) {
	if f.err != nil {
		return nil, f.err
	}
	if regType == modbus.INPUT_REGISTER {
		return f.inputs[addr : addr+quantity], nil
	}
	return f.holdings[addr : addr+quantity], nil
}

func (f *fakeClient) WriteCoil(addr uint16, value bool) error {
	f.writes = append(f.writes, value)
	return f.err
}

func (f *fakeClient) WriteCoils(addr uint16, values []bool) error {
	f.writes = append(f.writes, values)
	return f.err
}

func (f *fakeClient) WriteRegister(addr uint16, value uint16) error {
	f.writes = append(f.writes, value)
	return f.err
}

func (f *fakeClient) WriteRegisters(addr uint16, values []uint16) error {
	f.writes = append(f.writes, values)
	return f.err
}

func TestNewActionRejectsMismatchedHandler(t *testing.T) {
	_, err := NewAction(ReadCoils, 0, 1, NewCycleTrigger(time.Second), WriteBoolHandler(func(*regs.Bank) (bool, error) {
		return false, nil
	}))
	require.Error(t, err)
}

func TestActionExecuteReadHoldingRegistersMergesIntoBank(t *testing.T) {
	bank := regs.NewBank(regs.Sizes{Holdings: 4})
	client := &fakeClient{holdings: []uint16{11, 22, 33}}

	handler := ReadWordsHandler(func(bank *regs.Bank, values []uint16) error {
		return bank.SetHoldings(1, values)
	})
	action, err := NewAction(ReadHoldingRegisters, 0, 3, NewCycleTrigger(time.Second), handler)
	require.NoError(t, err)

	require.NoError(t, action.Execute(bank, client))

	got, err := bank.Holdings(1, 3)
	require.NoError(t, err)
	require.Equal(t, []uint16{11, 22, 33}, got)
}

func TestActionExecuteWriteCoilReadsFromBank(t *testing.T) {
	bank := regs.NewBank(regs.Sizes{Coils: 1})
	require.NoError(t, bank.SetCoil(0, true))
	client := &fakeClient{}

	handler := WriteBoolHandler(func(bank *regs.Bank) (bool, error) {
		return bank.Coil(0)
	})
	action, err := NewAction(WriteCoil, 5, 0, NewCycleTrigger(time.Second), handler)
	require.NoError(t, err)

	require.NoError(t, action.Execute(bank, client))
	require.Equal(t, []any{true}, client.writes)
}

func TestActionExecutePropagatesClientError(t *testing.T) {
	bank := regs.NewBank(regs.Sizes{Holdings: 1})
	boom := errors.New("boom")
	client := &fakeClient{err: boom}

	handler := ReadWordsHandler(func(*regs.Bank, []uint16) error { return nil })
	action, err := NewAction(ReadHoldingRegisters, 0, 1, NewCycleTrigger(time.Second), handler)
	require.NoError(t, err)

	err = action.Execute(bank, client)
	require.ErrorIs(t, err, boom)
}
