package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkroom/agitator/internal/motor"
	"github.com/darkroom/agitator/internal/recipe"
)

func simpleProcess() *recipe.Process {
	return &recipe.Process{
		Name: "proc",
		Steps: []recipe.Step{
			{Name: "only-step", Body: []recipe.Movement{recipe.CW(1)}},
		},
	}
}

func twoStepProcess() *recipe.Process {
	return &recipe.Process{
		Name: "proc",
		Steps: []recipe.Step{
			{Name: "first-step", Body: []recipe.Movement{recipe.CW(1)}},
			{Name: "second-step", Body: []recipe.Movement{recipe.CW(2)}},
		},
	}
}

func TestController_CommandsErrorWithoutActiveRun(t *testing.T) {
	c := New(motor.NewMock(), nil)

	assert.ErrorIs(t, c.Pause(), ErrNoActiveRun)
	assert.ErrorIs(t, c.Resume(), ErrNoActiveRun)
	assert.ErrorIs(t, c.Confirm(), ErrNoActiveRun)
	assert.ErrorIs(t, c.Skip(), ErrNoActiveRun)
	assert.ErrorIs(t, c.Restart(), ErrNoActiveRun)
	assert.True(t, c.Done())

	_, ok := c.Snapshot()
	assert.False(t, ok)

	// Ticking with no run active must not panic.
	assert.NotPanics(t, c.Tick)
}

func TestController_StartRunAndTick(t *testing.T) {
	c := New(motor.NewMock(), nil)
	c.StartRun(simpleProcess())

	snap, ok := c.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "proc", snap.ProcessName)
	assert.False(t, c.Done())
	assert.NotEmpty(t, c.CurrentRunID())

	c.Tick()
	require.NoError(t, c.Skip())
	assert.True(t, c.Done())
}

func TestController_PauseResumeToggle(t *testing.T) {
	c := New(motor.NewMock(), nil)
	c.StartRun(simpleProcess())

	assert.False(t, c.IsPaused())
	require.NoError(t, c.Pause())
	assert.True(t, c.IsPaused())
	require.NoError(t, c.Resume())
	assert.False(t, c.IsPaused())
}

func TestController_PauseDeenergizesMotorImmediately(t *testing.T) {
	driver := motor.NewMock()
	c := New(driver, nil)
	c.StartRun(&recipe.Process{
		Name: "proc",
		Steps: []recipe.Step{{Name: "only-step", Body: []recipe.Movement{recipe.CW(5)}}},
	})

	c.Tick()
	require.True(t, driver.IsClockwise(), "first tick should have energized clockwise")

	require.NoError(t, c.Pause())
	assert.True(t, driver.IsStopped(), "Pause must de-energize the motor without waiting for the next tick")
}

func TestController_SnapshotReportsMovementAndPauseState(t *testing.T) {
	c := New(motor.NewMock(), nil)
	c.StartRun(simpleProcess())
	c.Tick()

	snap, ok := c.Snapshot()
	require.True(t, ok)
	assert.Equal(t, recipe.KindCW, snap.MovementKind)
	assert.False(t, snap.Paused)

	require.NoError(t, c.Pause())
	snap, ok = c.Snapshot()
	require.True(t, ok)
	assert.True(t, snap.Paused)
}

func TestController_RestartStaysOnCurrentStep(t *testing.T) {
	c := New(motor.NewMock(), nil)
	c.StartRun(twoStepProcess())

	require.NoError(t, c.Skip())
	snap, ok := c.Snapshot()
	require.True(t, ok)
	require.Equal(t, 1, snap.StepIndex, "Skip must land on the second step")

	require.NoError(t, c.Restart())
	assert.False(t, c.Done())
	assert.False(t, c.IsPaused())

	snap, ok = c.Snapshot()
	require.True(t, ok)
	assert.Equal(t, 1, snap.StepIndex, "Restart must re-init the current step, not rewind to the first")
	assert.Equal(t, "second-step", snap.StepName)
}

func TestController_RestartOnLastStepDoesNotAdvance(t *testing.T) {
	c := New(motor.NewMock(), nil)
	c.StartRun(simpleProcess())

	require.NoError(t, c.Restart())
	assert.False(t, c.Done())

	snap, ok := c.Snapshot()
	require.True(t, ok)
	assert.Equal(t, 0, snap.StepIndex)
}

func TestController_StartRunReplacesPreviousRun(t *testing.T) {
	c := New(motor.NewMock(), nil)
	c.StartRun(simpleProcess())
	require.NoError(t, c.Pause())
	firstRunID := c.CurrentRunID()

	c.StartRun(simpleProcess())
	assert.False(t, c.IsPaused(), "starting a new run must clear any prior pause")
	assert.NotEqual(t, firstRunID, c.CurrentRunID(), "each StartRun must mint a fresh run id")
}
