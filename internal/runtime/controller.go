// Package runtime wires a ProcessInterpreter to the scheduler's Runner
// contract, translating operator commands into interpreter calls and
// tracking the paused/status state the HTTP API reports.
package runtime

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/darkroom/agitator/internal/interpreter"
	"github.com/darkroom/agitator/internal/motor"
	"github.com/darkroom/agitator/internal/recipe"
)

// ErrNoActiveRun is returned by commands when no process has been started.
var ErrNoActiveRun = fmt.Errorf("runtime: no active run")

// Controller owns the live ProcessInterpreter for the currently running
// recipe, if any, and satisfies scheduler.Runner. Paused/fault/step state
// lives on the ProcessInterpreter itself (spec-owned state); Controller
// only adds the run identity and the nil-run guard commands need.
type Controller struct {
	mu sync.Mutex

	driver   motor.Driver
	observer interpreter.Observer

	process *recipe.Process
	proc    *interpreter.ProcessInterpreter
	runID   string
}

// New builds a Controller bound to a motor driver and an observer that
// receives a Snapshot after every tick once a run is active.
func New(driver motor.Driver, observer interpreter.Observer) *Controller {
	return &Controller{driver: driver, observer: observer}
}

// StartRun installs a new process and starts it from its first step,
// replacing whatever run (if any) was previously active. A fresh run ID is
// minted so two runs of the same recipe never share an audit-trail
// identity in internal/runlog.
func (c *Controller) StartRun(process *recipe.Process) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.process = process
	c.runID = uuid.NewString()
	c.proc = &interpreter.ProcessInterpreter{}
	c.proc.Init(process, c.driver, c.observer)
}

// CurrentRunID reports the identifier minted for the active run, or "" if
// no run has ever started.
func (c *Controller) CurrentRunID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runID
}

// Snapshot returns the interpreter's own cached state as of its most recent
// tick, or a zero Snapshot with ok=false if no run is active. It does not
// itself invoke the observer or advance anything.
func (c *Controller) Snapshot() (interpreter.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.proc == nil {
		return interpreter.Snapshot{}, false
	}
	return c.proc.Snapshot(), true
}

// Tick advances the active run by one tick. It is a no-op when no run is
// active, so the scheduler can keep ticking even while idle between runs.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.proc == nil {
		return
	}
	c.proc.Tick()
}

// Pause immediately de-energizes the motor and marks the run paused.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.proc == nil {
		return ErrNoActiveRun
	}
	c.proc.Pause()
	return nil
}

// Resume clears the paused flag.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.proc == nil {
		return ErrNoActiveRun
	}
	c.proc.Resume()
	return nil
}

// Confirm acknowledges the current WaitUser gate, if any.
func (c *Controller) Confirm() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.proc == nil {
		return ErrNoActiveRun
	}
	if c.proc.Fault() != nil {
		c.proc.ClearFault()
		return nil
	}
	c.proc.Confirm()
	return nil
}

// Skip abandons the current step and advances to the next one.
func (c *Controller) Skip() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.proc == nil {
		return ErrNoActiveRun
	}
	return c.proc.Skip()
}

// Restart re-initializes the movement interpreter from the current step's
// body, leaving the step index untouched.
func (c *Controller) Restart() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.proc == nil {
		return ErrNoActiveRun
	}
	c.proc.RestartCurrentStep()
	return nil
}

// IsPaused reports whether the active run is paused. Returns false when no
// run has ever started.
func (c *Controller) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.proc == nil {
		return false
	}
	return c.proc.Paused()
}

// Done reports whether the active run has completed all steps. Returns
// true when no run has ever started.
func (c *Controller) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.proc == nil {
		return true
	}
	return c.proc.Done()
}
