package interpreter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkroom/agitator/internal/motor"
	"github.com/darkroom/agitator/internal/recipe"
)

func twoStepProcess() *recipe.Process {
	return &recipe.Process{
		Name: "test-process",
		Steps: []recipe.Step{
			{Name: "step-one", Body: []recipe.Movement{recipe.CW(1), recipe.WaitUser("flip the tank")}},
			{Name: "step-two", Body: []recipe.Movement{recipe.CCW(1)}},
		},
	}
}

func tickUntil(t *testing.T, p *ProcessInterpreter, want TickResult, maxTicks int) bool {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		if p.Tick() == want {
			return true
		}
	}
	return false
}

func TestProcessInterpreter_AdvancesStepsAndFinishes(t *testing.T) {
	mock := motor.NewMock()
	var snapshots []Snapshot

	var p ProcessInterpreter
	p.Init(twoStepProcess(), mock, func(s Snapshot) { snapshots = append(snapshots, s) })

	require.True(t, tickUntil(t, &p, AwaitingUser, 10), "step one must eventually gate on its WaitUser movement")
	assert.Equal(t, 0, p.StepIndex())

	p.Confirm()
	require.True(t, tickUntil(t, &p, Done, 10), "step two must eventually complete the whole process")
	assert.True(t, p.Done())

	require.NotEmpty(t, snapshots)
	last := snapshots[len(snapshots)-1]
	assert.Equal(t, Done, last.Result)
	assert.Equal(t, "test-process", last.ProcessName)
}

func TestProcessInterpreter_DoneIsSticky(t *testing.T) {
	mock := motor.NewMock()
	var p ProcessInterpreter
	p.Init(&recipe.Process{Name: "empty", Steps: nil}, mock, nil)

	require.True(t, p.Done(), "a process with no steps is done immediately")
	assert.Equal(t, Done, p.Tick())
	assert.Equal(t, Done, p.Tick())
	assert.Equal(t, Done, p.Tick())
}

func TestProcessInterpreter_ConfirmWhenNotWaitingIsNoOp(t *testing.T) {
	mock := motor.NewMock()
	var p ProcessInterpreter
	p.Init(twoStepProcess(), mock, nil)

	p.Confirm() // not parked on a WaitUser gate yet; must be a no-op
	assert.Equal(t, Active, p.Tick())
}

func TestProcessInterpreter_SkipAbandonsCurrentStep(t *testing.T) {
	mock := motor.NewMock()
	var p ProcessInterpreter
	p.Init(twoStepProcess(), mock, nil)

	require.NoError(t, p.Skip())
	assert.Equal(t, 1, p.StepIndex())

	require.NoError(t, p.Skip())
	assert.True(t, p.Done())

	assert.ErrorIs(t, p.Skip(), ErrNoSuchStep)
}

type faultingDriver struct {
	*motor.Mock
	err error
}

func (f *faultingDriver) LastError() error { return f.err }
func (f *faultingDriver) ClearError()      { f.err = nil }

func TestProcessInterpreter_LatchesFaultAndStopsTicking(t *testing.T) {
	drv := &faultingDriver{Mock: motor.NewMock()}
	var p ProcessInterpreter
	p.Init(twoStepProcess(), drv, nil)

	drv.err = errors.New("stall detected")

	before := p.StepIndex()
	assert.Equal(t, Active, p.Tick())
	assert.Equal(t, before, p.StepIndex(), "a latched fault must not let the process advance")
	assert.Error(t, p.Fault())

	// The fault stays latched across further ticks even if the driver
	// clears its own error out from under the interpreter.
	drv.err = nil
	assert.Equal(t, Active, p.Tick())
	assert.Error(t, p.Fault())

	p.ClearFault()
	assert.NoError(t, p.Fault())
}

func TestProcessInterpreter_PauseDeenergizesImmediately(t *testing.T) {
	mock := motor.NewMock()
	var p ProcessInterpreter
	p.Init(&recipe.Process{
		Name:  "proc",
		Steps: []recipe.Step{{Name: "only", Body: []recipe.Movement{recipe.CW(5)}}},
	}, mock, nil)

	require.Equal(t, Active, p.Tick())
	require.True(t, mock.IsClockwise(), "first tick should have energized clockwise")

	p.Pause()
	assert.True(t, p.Paused())
	assert.True(t, mock.IsStopped(), "Pause must de-energize without waiting for the next tick")
}

func TestProcessInterpreter_PausedTickReportsActiveWithoutSubTickingMovement(t *testing.T) {
	mock := motor.NewMock()
	var p ProcessInterpreter
	p.Init(&recipe.Process{
		Name:  "proc",
		Steps: []recipe.Step{{Name: "only", Body: []recipe.Movement{recipe.CW(5)}}},
	}, mock, nil)

	require.Equal(t, Active, p.Tick())
	before := p.movement.TicksRemaining()

	p.Pause()
	assert.Equal(t, Active, p.Tick())
	assert.Equal(t, before, p.movement.TicksRemaining(), "a paused tick must not sub-tick the movement layer")
}

func TestProcessInterpreter_ResumeDoesNotReenergizeStaleMovement(t *testing.T) {
	// Faithful to the reference firmware: pause de-energizes at the driver
	// level directly, bypassing the movement interpreter's own state, so a
	// CW/CCW movement interrupted mid-flight stays de-energized for its
	// remaining ticks after Resume.
	mock := motor.NewMock()
	var p ProcessInterpreter
	p.Init(&recipe.Process{
		Name:  "proc",
		Steps: []recipe.Step{{Name: "only", Body: []recipe.Movement{recipe.CW(5)}}},
	}, mock, nil)

	require.Equal(t, Active, p.Tick())
	p.Pause()
	p.Resume()

	assert.True(t, mock.IsStopped(), "resume alone must not re-energize a movement interrupted mid-flight")
}

func TestProcessInterpreter_PauseResumeIdempotent(t *testing.T) {
	mock := motor.NewMock()
	var p ProcessInterpreter
	p.Init(twoStepProcess(), mock, nil)

	p.Pause()
	p.Pause()
	p.Resume()
	p.Resume()
	assert.False(t, p.Paused())

	var q ProcessInterpreter
	q.Init(twoStepProcess(), motor.NewMock(), nil)
	q.Pause()
	q.Resume()
	assert.Equal(t, p.Paused(), q.Paused())
}

func TestProcessInterpreter_RestartCurrentStepKeepsStepIndex(t *testing.T) {
	mock := motor.NewMock()
	var p ProcessInterpreter
	p.Init(twoStepProcess(), mock, nil)

	require.NoError(t, p.Skip())
	require.Equal(t, 1, p.StepIndex())

	require.Equal(t, Active, p.Tick())

	p.RestartCurrentStep()
	assert.False(t, p.Done())
	assert.Equal(t, 1, p.StepIndex(), "RestartCurrentStep must not touch stepIndex")
}

func TestProcessInterpreter_SnapshotReportsTemperatureAndPauseState(t *testing.T) {
	mock := motor.NewMock()
	process := &recipe.Process{
		Name: "proc",
		Steps: []recipe.Step{
			{Name: "only", TargetTemperatureC: 38, Body: []recipe.Movement{recipe.CW(1)}},
		},
	}
	var p ProcessInterpreter
	p.Init(process, mock, nil)

	snap := p.Snapshot()
	assert.Equal(t, float32(38), snap.TargetTemperatureC)
	assert.False(t, snap.Paused)

	p.Pause()
	snap = p.Snapshot()
	assert.True(t, snap.Paused)
}

func TestProcessInterpreter_Reset(t *testing.T) {
	mock := motor.NewMock()
	var p ProcessInterpreter
	p.Init(twoStepProcess(), mock, nil)

	require.NoError(t, p.Skip())
	require.NoError(t, p.Skip())
	require.True(t, p.Done())

	p.Reset()
	assert.False(t, p.Done())
	assert.Equal(t, 0, p.StepIndex())
}
