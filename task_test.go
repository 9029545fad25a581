package plc

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/AndreiLosev/plc/regs"
	"github.com/stretchr/testify/require"
)

func mustTask(t *testing.T, task *Task, err error) *Task {
	t.Helper()
	require.NoError(t, err)
	return task
}

func noopProgram() []Program {
	return []Program{ProgramFunc(func(*regs.Bank) error { return nil })}
}

// TestCallStackSortOrder mirrors the original scheduler's stable sort: all
// cyclic and edge-triggered tasks sort before all background tasks, and
// within each class tasks are ordered by ascending priority with ties
// broken by insertion order.
func TestCallStackSortOrder(t *testing.T) {
	mk := func(name string, priority uint8, background bool) *Task {
		if background {
			return mustTask(t, NewBackgroundTask(name, noopProgram(), priority))
		}
		return mustTask(t, NewCycleTask(name, noopProgram(), priority, time.Second))
	}

	stack := []*Task{
		mk("bg-low", 5, true),
		mk("cyc-high", 9, false),
		mk("bg-high", 1, true),
		mk("cyc-low", 2, false),
		mk("cyc-dup-a", 4, false),
		mk("cyc-dup-b", 4, false),
	}

	sort.SliceStable(stack, func(i, j int) bool { return taskLess(stack[i], stack[j]) })

	var order []string
	for _, task := range stack {
		order = append(order, task.name)
	}

	require.Equal(t, []string{
		"cyc-low",    // class default, priority 2
		"cyc-dup-a",  // class default, priority 4 (inserted before cyc-dup-b)
		"cyc-dup-b",  // class default, priority 4
		"cyc-high",   // class default, priority 9
		"bg-high",    // class background, priority 1
		"bg-low",     // class background, priority 5
	}, order)
}

func TestTaskConstructionRejectsEmptyPrograms(t *testing.T) {
	_, err := NewBackgroundTask("empty", nil, 0)
	require.Error(t, err)
	var shapeErr *TaskShapeError
	require.ErrorAs(t, err, &shapeErr)
}

// TestTaskStepAdvancesOneProgramPerCall verifies step never runs more than
// one program in a single call: a 3-program task needs exactly 3 calls to
// step to report done, and each call runs only the program at the cursor.
func TestTaskStepAdvancesOneProgramPerCall(t *testing.T) {
	var ran []int
	programs := []Program{
		ProgramFunc(func(*regs.Bank) error { ran = append(ran, 0); return nil }),
		ProgramFunc(func(*regs.Bank) error { ran = append(ran, 1); return nil }),
		ProgramFunc(func(*regs.Bank) error { ran = append(ran, 2); return nil }),
	}
	task := mustTask(t, NewBackgroundTask("seq", programs, 0))
	bank := regs.NewBank(regs.Sizes{})
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }

	done, err := task.step(now, bank, clock, 0)
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, []int{0}, ran)

	done, err = task.step(now, bank, clock, 0)
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, []int{0, 1}, ran)

	done, err = task.step(now, bank, clock, 0)
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, []int{0, 1, 2}, ran)
	require.Equal(t, 0, task.cursor)
}

func TestTaskStepPropagatesProgramError(t *testing.T) {
	boom := errors.New("boom")
	programs := []Program{
		ProgramFunc(func(*regs.Bank) error { return boom }),
	}
	task := mustTask(t, NewBackgroundTask("fails", programs, 0))

	now := time.Unix(0, 0)
	done, err := task.step(now, regs.NewBank(regs.Sizes{}), func() time.Time { return now }, 0)
	require.True(t, done)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, task.cursor)
}

func TestTaskStepDetectsCycleOverrun(t *testing.T) {
	programs := []Program{
		ProgramFunc(func(*regs.Bank) error { return nil }),
		ProgramFunc(func(*regs.Bank) error { return nil }),
	}
	task := mustTask(t, NewCycleTask("slow", programs, 0, 10*time.Millisecond))

	start := time.Unix(0, 0)
	late := start.Add(50 * time.Millisecond)
	clock := func() time.Time { return late }

	done, err := task.step(start, regs.NewBank(regs.Sizes{}), clock, 0)
	require.True(t, done)
	require.Error(t, err)
	var timeoutErr *TaskTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	require.Equal(t, "slow", timeoutErr.Task)
}

// TestBackgroundEventNeverReportsReady documents the spec's invariant that
// a background task's own is_ready always reports false: it only ever
// runs via the scheduler's pool-promotion logic, never its own trigger.
func TestBackgroundEventNeverReportsReady(t *testing.T) {
	task := mustTask(t, NewBackgroundTask("bg", noopProgram(), 0))
	ready, err := task.isReady(time.Unix(0, 0), regs.NewBank(regs.Sizes{}))
	require.NoError(t, err)
	require.False(t, ready)
}

func TestBitFrontTaskReadyOnRisingEdgeOnly(t *testing.T) {
	bank := regs.NewBank(regs.Sizes{Coils: 1})
	task := mustTask(t, NewBitFrontTask("edge", noopProgram(), 0, 0, SourceCoil))

	ready, err := task.isReady(time.Unix(0, 0), bank)
	require.NoError(t, err)
	require.False(t, ready)

	require.NoError(t, bank.SetCoil(0, true))
	ready, err = task.isReady(time.Unix(0, 0), bank)
	require.NoError(t, err)
	require.True(t, ready)

	ready, err = task.isReady(time.Unix(0, 0), bank)
	require.NoError(t, err)
	require.False(t, ready, "must not refire while the coil remains high")
}
