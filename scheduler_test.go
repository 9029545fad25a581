package plc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AndreiLosev/plc/regs"
	"github.com/stretchr/testify/require"
)

// TestPlcTickStepsOnlyTheHeadOfTheCallStack verifies Testable Property 7:
// each tick() call advances exactly one program, belonging to whichever
// task currently sorts first. high and low are both ready from the first
// tick (the clock never advances), but because each is a single-program
// task, a tick steps and completes only one of them before the other's
// turn comes on a later tick; bg is never promoted while either is ready.
func TestPlcTickStepsOnlyTheHeadOfTheCallStack(t *testing.T) {
	bank := regs.NewBank(regs.Sizes{})
	var order []string

	mkProgram := func(name string) []Program {
		return []Program{ProgramFunc(func(*regs.Bank) error {
			order = append(order, name)
			return nil
		})}
	}

	high, err := NewCycleTask("high", mkProgram("high"), 1, time.Millisecond)
	require.NoError(t, err)
	low, err := NewCycleTask("low", mkProgram("low"), 9, time.Millisecond)
	require.NoError(t, err)
	bg, err := NewBackgroundTask("bg", mkProgram("bg"), 0)
	require.NoError(t, err)

	now := time.Unix(0, 0)
	sched, err := New([]*Task{low, bg, high}, bank, WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	require.True(t, sched.tick())
	require.Equal(t, []string{"high"}, order)

	require.True(t, sched.tick())
	require.Equal(t, []string{"high", "low"}, order)

	require.True(t, sched.tick())
	require.Equal(t, []string{"high", "low", "bg"}, order)
}

func TestPlcTickIsolatesTaskErrors(t *testing.T) {
	bank := regs.NewBank(regs.Sizes{})
	boom := errors.New("boom")

	failing, err := NewBackgroundTask("failing", []Program{
		ProgramFunc(func(*regs.Bank) error { return boom }),
	}, 0)
	require.NoError(t, err)

	var ran bool
	ok, err := NewBackgroundTask("ok", []Program{
		ProgramFunc(func(*regs.Bank) error { ran = true; return nil }),
	}, 1)
	require.NoError(t, err)
	_ = ok

	now := time.Unix(0, 0)
	sched, err := New([]*Task{failing, ok}, bank, WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	require.NotPanics(t, func() { sched.tick() })
	require.NotPanics(t, func() { sched.tick() })
	require.True(t, ran)
}

// TestPlcBackgroundPromotedOnlyWhenCallStackIdle documents the pool model:
// a background task never preempts a ready event-class task, and is only
// promoted onto the call stack once it is the scheduler's only option.
func TestPlcBackgroundPromotedOnlyWhenCallStackIdle(t *testing.T) {
	bank := regs.NewBank(regs.Sizes{Coils: 1})
	var order []string

	edge, err := NewBitFrontTask("edge", []Program{ProgramFunc(func(*regs.Bank) error {
		order = append(order, "edge")
		return nil
	})}, 0, 0, SourceCoil)
	require.NoError(t, err)

	bg, err := NewBackgroundTask("bg", []Program{ProgramFunc(func(*regs.Bank) error {
		order = append(order, "bg")
		return nil
	})}, 0)
	require.NoError(t, err)

	now := time.Unix(0, 0)
	sched, err := New([]*Task{edge, bg}, bank, WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	// edge is not ready yet (no rising edge sampled): only bg can run.
	require.True(t, sched.tick())
	require.Equal(t, []string{"bg"}, order)

	// raise the coil so edge becomes ready; it must preempt bg's pool slot.
	require.NoError(t, bank.SetCoil(0, true))
	require.True(t, sched.tick())
	require.Equal(t, []string{"bg", "edge"}, order)
}

func TestPlcRunHonorsContextCancellation(t *testing.T) {
	bank := regs.NewBank(regs.Sizes{})
	bg, err := NewBackgroundTask("bg", []Program{
		ProgramFunc(func(*regs.Bank) error { return nil }),
	}, 0)
	require.NoError(t, err)

	sched, err := New([]*Task{bg}, bank, WithIdleSleep(0))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = sched.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewRejectsNoTasks(t *testing.T) {
	_, err := New(nil, regs.NewBank(regs.Sizes{}))
	require.Error(t, err)
}
