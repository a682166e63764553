package interpreter

import (
	"fmt"

	"github.com/darkroom/agitator/internal/motor"
	"github.com/darkroom/agitator/internal/recipe"
)

// Observer receives a Snapshot after every tick, whatever its result
// (including paused, waiting, faulted and already-done ticks). It is called
// synchronously from Tick and must not block; callers that need to fan out (WebSocket hub, MQTT publisher,
// runlog) should do so on their own goroutine.
type Observer func(Snapshot)

// Snapshot is a point-in-time rendering of process interpreter state,
// stable enough to serialize for the HTTP/WebSocket status endpoints and
// the run-history audit log.
type Snapshot struct {
	ProcessName string
	StepIndex   int
	StepName    string
	StepCount   int

	TargetTemperatureC float32

	MovementKind   recipe.MovementKind
	TicksRemaining recipe.Ticks
	LoopDepth      int

	Result TickResult
	Paused bool

	AwaitingMessage string

	Fault error
}

// ProcessInterpreter sequences a Process's steps, running one
// MovementInterpreter per step and gating advancement on WaitUser
// confirmation. It is the specification's upper interpreter layer.
type ProcessInterpreter struct {
	process *recipe.Process
	driver  motor.Driver

	stepIndex int
	movement  MovementInterpreter

	waitingForUser bool
	userMessage    string

	paused bool

	done  bool
	fault error

	lastResult TickResult

	observer Observer
}

// Init installs a process and motor port and starts the first step's
// movement sequence. Passing a nil observer is valid; no snapshots are then
// emitted.
func (p *ProcessInterpreter) Init(process *recipe.Process, driver motor.Driver, observer Observer) {
	p.process = process
	p.driver = driver
	p.observer = observer
	p.stepIndex = 0
	p.waitingForUser = false
	p.userMessage = ""
	p.paused = false
	p.done = false
	p.fault = nil
	p.lastResult = Active
	p.startStep()
}

// Reset restarts the process from its first step.
func (p *ProcessInterpreter) Reset() {
	p.Init(p.process, p.driver, p.observer)
}

func (p *ProcessInterpreter) startStep() {
	if p.stepIndex >= len(p.process.Steps) {
		p.done = true
		return
	}
	p.movement.Init(p.process.Steps[p.stepIndex].Body, p.driver)
}

// Tick advances the process interpreter by one tick. Order of checks
// mirrors the algorithm exactly: a latched fault or completion short-circuit
// first, then a pending WaitUser gate (no sub-tick of the movement layer
// while waiting), then a pause (which de-energizes and reports Active
// without ticking the movement layer either), and only then does the
// movement interpreter itself advance.
func (p *ProcessInterpreter) Tick() TickResult {
	if p.fault != nil {
		p.emit(Active)
		return Active
	}
	if p.done {
		p.emit(Done)
		return Done
	}
	if p.waitingForUser {
		p.emit(AwaitingUser)
		return AwaitingUser
	}
	if p.paused {
		p.driver.Clockwise(false)
		p.driver.CounterClockwise(false)
		p.emit(Active)
		return Active
	}

	if drv, ok := p.driver.(interface{ LastError() error }); ok {
		if err := drv.LastError(); err != nil {
			p.fault = err
			p.emit(Active)
			return Active
		}
	}

	res := p.movement.Tick()

	switch res {
	case AwaitingUser:
		p.waitingForUser = true
		if msg, ok := p.movement.CurrentMessage(); ok {
			p.userMessage = msg
		}
		p.emit(AwaitingUser)
		return AwaitingUser
	case Done:
		p.stepIndex++
		p.startStep()
		if p.done {
			p.emit(Done)
			return Done
		}
		p.emit(Active)
		return Active
	default:
		p.emit(Active)
		return Active
	}
}

// Confirm acknowledges the current WaitUser gate and lets the movement
// interpreter advance past it. It is a no-op if the interpreter is not
// currently parked on a WaitUser movement.
func (p *ProcessInterpreter) Confirm() {
	if !p.waitingForUser {
		return
	}
	p.waitingForUser = false
	p.userMessage = ""
	p.movement.AdvancePastWait()
}

// Pause sets the pause flag and immediately de-energizes the motor,
// regardless of whatever movement was mid-flight. Idempotent and
// side-effect-safe: calling it again while already paused just de-energizes
// again.
func (p *ProcessInterpreter) Pause() {
	p.paused = true
	p.driver.Clockwise(false)
	p.driver.CounterClockwise(false)
}

// Resume clears the pause flag. It does not itself re-energize the motor;
// the movement interpreter only re-energizes a channel the next time it
// dispatches a new movement, so a CW/CCW movement interrupted mid-flight by
// Pause stays de-energized for however many ticks it had remaining, exactly
// as the reference firmware behaves.
func (p *ProcessInterpreter) Resume() {
	p.paused = false
}

// Paused reports whether the process is currently paused.
func (p *ProcessInterpreter) Paused() bool { return p.paused }

// Fault returns the most recently latched motor fault, if any. Once
// latched, the process interpreter stops ticking the movement layer until
// ClearFault is called, so a jammed or faulted motor never silently
// continues a recipe.
func (p *ProcessInterpreter) Fault() error { return p.fault }

// ClearFault drops the latched fault and the underlying driver's recorded
// error (when the driver exposes ClearError), resuming normal ticking.
func (p *ProcessInterpreter) ClearFault() {
	p.fault = nil
	if drv, ok := p.driver.(interface{ ClearError() }); ok {
		drv.ClearError()
	}
}

// Done reports whether the process has completed all steps.
func (p *ProcessInterpreter) Done() bool { return p.done }

// StepIndex reports the zero-based index of the step currently executing.
func (p *ProcessInterpreter) StepIndex() int { return p.stepIndex }

// Snapshot reports interpreter state as of the most recently emitted tick
// (or Init, if no tick has occurred yet). It is the pull-based counterpart
// to Observer, for callers like the HTTP status endpoint that query state
// between ticks rather than reacting to every one.
func (p *ProcessInterpreter) Snapshot() Snapshot {
	return p.buildSnapshot(p.lastResult)
}

func (p *ProcessInterpreter) buildSnapshot(result TickResult) Snapshot {
	snap := Snapshot{
		ProcessName: p.process.Name,
		StepIndex:   p.stepIndex,
		StepCount:   len(p.process.Steps),
		Result:      result,
		Paused:      p.paused,
		Fault:       p.fault,
	}
	if p.stepIndex < len(p.process.Steps) {
		step := p.process.Steps[p.stepIndex]
		snap.StepName = step.Name
		snap.TargetTemperatureC = step.TargetTemperatureC
		snap.MovementKind = p.movement.CurrentKind()
		snap.TicksRemaining = p.movement.TicksRemaining()
		snap.LoopDepth = p.movement.Depth()
	}
	if p.waitingForUser {
		snap.AwaitingMessage = p.userMessage
	}
	return snap
}

func (p *ProcessInterpreter) emit(result TickResult) {
	p.lastResult = result
	if p.observer == nil {
		return
	}
	p.observer(p.buildSnapshot(result))
}

// ErrNoSuchStep is returned by Skip when asked to jump past the end of the
// process.
var ErrNoSuchStep = fmt.Errorf("interpreter: no such step")

// Skip abandons the current step's movement sequence and starts the next
// step immediately, without requiring a WaitUser confirmation. It exists
// for operator-driven recovery, not for normal recipe flow.
func (p *ProcessInterpreter) Skip() error {
	if p.done {
		return ErrNoSuchStep
	}
	p.waitingForUser = false
	p.userMessage = ""
	p.stepIndex++
	p.startStep()
	return nil
}

// RestartCurrentStep re-initializes the movement interpreter from the
// current step's body, leaving stepIndex untouched — the UI's "restart
// step" command. Reset, by contrast, rewinds the whole process to its
// first step.
func (p *ProcessInterpreter) RestartCurrentStep() {
	p.done = false
	p.fault = nil
	p.waitingForUser = false
	p.userMessage = ""
	p.paused = false
	p.startStep()
}
