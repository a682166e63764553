// Package interpreter implements the two-layer tick-driven sequence
// interpreter: MovementInterpreter executes one step's movement tree,
// ProcessInterpreter sequences a process's steps and mediates user
// confirmation gates.
package interpreter

import (
	"github.com/darkroom/agitator/internal/motor"
	"github.com/darkroom/agitator/internal/recipe"
)

// MaxDepth bounds the loop-context stack. A recipe whose nesting would
// exceed it has the offending loop silently dropped — documented policy,
// not a bug (see the loop push path below).
const MaxDepth = 3

// TickResult is the outcome of a single MovementInterpreter.tick() or
// ProcessInterpreter.tick() call.
type TickResult int

const (
	Active TickResult = iota
	Done
	AwaitingUser
)

func (r TickResult) String() string {
	switch r {
	case Active:
		return "Active"
	case Done:
		return "Done"
	case AwaitingUser:
		return "AwaitingUser"
	default:
		return "Unknown"
	}
}

// loopFrame is one frame on the movement interpreter's loop stack.
type loopFrame struct {
	body       []recipe.Movement
	bodyLength int

	// parentIndex is the index within the parent sequence where the Loop
	// movement that created this frame sits, so popping resumes at
	// parentIndex+1.
	parentIndex int

	remainingIterations uint32
	originalCount        uint32

	maxDuration    recipe.Ticks
	elapsedDuration recipe.Ticks

	terminated bool
}

// MovementInterpreter executes one linear movement sequence one tick at a
// time, maintaining a bounded loop-context stack with count- and
// duration-bounded iteration. It is the lower of the two interpreters in the
// specification; ProcessInterpreter owns one per step.
type MovementInterpreter struct {
	rootBody []recipe.Movement

	currentBody       []recipe.Movement
	currentBodyLength int
	currentIndex      int

	stack [MaxDepth]loopFrame
	depth int

	currentKind   recipe.MovementKind
	ticksRemaining recipe.Ticks

	motor motor.Driver
}

// Init installs a top-level movement sequence and the motor port, clears the
// loop stack, and de-energizes the motor before returning.
func (m *MovementInterpreter) Init(body []recipe.Movement, driver motor.Driver) {
	m.rootBody = body
	m.motor = driver
	// Switch off whatever the previous sequence left running before the
	// kind is reset; stopCurrent leaves currentKind at Pause.
	m.stopCurrent()
	m.currentBody = body
	m.currentBodyLength = len(body)
	m.currentIndex = 0
	m.depth = 0
	m.stack = [MaxDepth]loopFrame{}
	m.ticksRemaining = 0
}

// Reset re-seeds the interpreter from the originally installed body and
// motor port.
func (m *MovementInterpreter) Reset() {
	m.Init(m.rootBody, m.motor)
}

// CurrentKind reports the movement kind currently in effect (for UI
// rendering).
func (m *MovementInterpreter) CurrentKind() recipe.MovementKind { return m.currentKind }

// TicksRemaining reports ticks left on the in-flight movement.
func (m *MovementInterpreter) TicksRemaining() recipe.Ticks { return m.ticksRemaining }

// Depth reports the current loop-stack depth.
func (m *MovementInterpreter) Depth() int { return m.depth }

// InnermostLoop reports the elapsed ticks and the max_duration bound (0 when
// unbounded by time) of the innermost active loop frame, if any, for UI
// rendering.
func (m *MovementInterpreter) InnermostLoop() (elapsed, maxDuration recipe.Ticks, ok bool) {
	if m.depth == 0 {
		return 0, 0, false
	}
	f := &m.stack[m.depth-1]
	return f.elapsedDuration, f.maxDuration, true
}

// CurrentMessage returns the message of the WaitUser movement the
// interpreter is currently parked on, if any.
func (m *MovementInterpreter) CurrentMessage() (string, bool) {
	if m.currentIndex >= m.currentBodyLength {
		return "", false
	}
	mv := m.currentBody[m.currentIndex]
	if mv.Kind != recipe.KindWaitUser {
		return "", false
	}
	return mv.Message, true
}

// AdvancePastWait moves the index past the WaitUser movement the
// interpreter is parked on. It is a no-op if not currently parked on one.
func (m *MovementInterpreter) AdvancePastWait() {
	if _, ok := m.CurrentMessage(); ok {
		m.currentIndex++
	}
}

// stopCurrent asks the driver to de-energize whichever channel corresponds
// to the current movement kind (a no-op for Pause) and resets the kind to
// Pause.
func (m *MovementInterpreter) stopCurrent() {
	switch m.currentKind {
	case recipe.KindCW:
		m.motor.Clockwise(false)
	case recipe.KindCCW:
		m.motor.CounterClockwise(false)
	}
	m.currentKind = recipe.KindPause
}

// Tick advances the interpreter by exactly one tick.
func (m *MovementInterpreter) Tick() TickResult {
	// 1. Unwind check: exhausted sub-sequence, or top frame terminated.
	if res, unwound := m.unwindIfNeeded(); unwound {
		return res
	}

	// 2. Duration accounting on every live loop frame, root to top.
	if m.accrueLoopDurations() {
		// Something was terminated by a deadline this tick; re-run the
		// unwind check once and report Active — time advanced but no new
		// movement starts this tick.
		if res, unwound := m.unwindIfNeeded(); unwound {
			return res
		}
		return Active
	}

	// 3. Consume a running movement.
	if m.ticksRemaining > 0 {
		m.ticksRemaining--
		return Active
	}

	// 4. Dispatch the next movement, possibly pushing loops without
	// consuming a tick.
	return m.dispatch()
}

// unwindIfNeeded pops/advances loop frames until the interpreter is
// positioned on a concrete movement to dispatch, or determines the whole
// run is Done. It returns (result, true) when it produced a terminal
// per-tick result (only Done is possible here); (zero, false) otherwise.
func (m *MovementInterpreter) unwindIfNeeded() (TickResult, bool) {
	cut := false
	for m.currentIndex >= m.currentBodyLength || (m.depth > 0 && m.stack[m.depth-1].terminated) {
		if m.depth == 0 {
			// The root body is exhausted, but its last movement still has
			// ticks to run: let Tick consume them before reporting Done.
			// A movement cut short by a loop deadline is not resumed.
			if m.ticksRemaining > 0 && !cut {
				return 0, false
			}
			m.ticksRemaining = 0
			m.stopCurrent()
			return Done, true
		}

		top := &m.stack[m.depth-1]

		if top.terminated {
			cut = true
			m.popFrame()
			continue
		}

		if top.originalCount > 0 {
			top.remainingIterations--
			if top.remainingIterations > 0 {
				m.currentIndex = 0
				continue
			}
			m.popFrame()
			continue
		}

		// originalCount == 0: unbounded by count. Restart unless the frame
		// itself (or an outer frame) has been terminated, which the loop
		// condition above already filters for.
		m.currentIndex = 0
	}
	return 0, false
}

// popFrame restores the parent sequence and resumes just past the Loop
// movement that pushed this frame.
func (m *MovementInterpreter) popFrame() {
	top := m.stack[m.depth-1]
	m.depth--
	m.currentBody = top.body
	m.currentBodyLength = top.bodyLength
	m.currentIndex = top.parentIndex + 1
}

// accrueLoopDurations increments elapsedDuration on every active frame and
// latches terminated on any frame whose deadline has now elapsed,
// propagating termination to all inner frames (an outer deadline
// unconditionally aborts inner work). Returns true if any frame was newly
// terminated this tick.
func (m *MovementInterpreter) accrueLoopDurations() bool {
	terminated := false
	forceInner := false
	for i := 0; i < m.depth; i++ {
		f := &m.stack[i]
		f.elapsedDuration++
		if forceInner {
			if !f.terminated {
				f.terminated = true
				terminated = true
			}
			continue
		}
		if f.maxDuration > 0 && f.elapsedDuration >= f.maxDuration {
			if !f.terminated {
				f.terminated = true
				terminated = true
			}
			forceInner = true
		}
	}
	return terminated
}

// dispatch fetches currentBody[currentIndex] and acts on it, looping locally
// when a Loop movement pushes a new frame (loops never themselves consume a
// tick).
func (m *MovementInterpreter) dispatch() TickResult {
	for {
		mv := m.currentBody[m.currentIndex]

		switch mv.Kind {
		case recipe.KindCW:
			m.stopCurrent()
			m.motor.Clockwise(true)
			m.currentKind = recipe.KindCW
			m.ticksRemaining = mv.Duration
			m.currentIndex++
			return Active

		case recipe.KindCCW:
			m.stopCurrent()
			m.motor.CounterClockwise(true)
			m.currentKind = recipe.KindCCW
			m.ticksRemaining = mv.Duration
			m.currentIndex++
			return Active

		case recipe.KindPause:
			m.stopCurrent()
			m.currentKind = recipe.KindPause
			m.ticksRemaining = mv.Duration
			m.currentIndex++
			return Active

		case recipe.KindLoop:
			if !m.pushFrame(mv.Loop) {
				// MAX_DEPTH exceeded: silently drop the loop and step past
				// it, matching the reference interpreter's behavior.
				m.currentIndex++
				if m.currentIndex >= m.currentBodyLength {
					if res, unwound := m.unwindIfNeeded(); unwound {
						return res
					}
				}
				continue
			}
			// An empty loop body must pop (decrementing count, if any)
			// immediately rather than dispatching out of bounds.
			if res, unwound := m.unwindIfNeeded(); unwound {
				return res
			}
			continue

		case recipe.KindWaitUser:
			m.stopCurrent()
			return AwaitingUser

		default:
			m.currentIndex++
			continue
		}
	}
}

// pushFrame saves the parent sequence unconditionally (always, not only
// when depth > 0 — this is the fix the specification prescribes over the
// source's ambiguous conditional) and retargets the interpreter at the
// loop body. Returns false if MAX_DEPTH would be exceeded.
func (m *MovementInterpreter) pushFrame(spec recipe.LoopSpec) bool {
	if m.depth == MaxDepth {
		return false
	}

	m.stack[m.depth] = loopFrame{
		body:                m.currentBody,
		bodyLength:          m.currentBodyLength,
		parentIndex:         m.currentIndex,
		originalCount:       spec.Count,
		remainingIterations: spec.Count,
		maxDuration:         spec.MaxDuration,
	}
	m.depth++

	m.currentBody = spec.Body
	m.currentBodyLength = len(spec.Body)
	m.currentIndex = 0
	return true
}
