package motor

import "sync"

// Transition records one observed channel-energize/de-energize event, in
// the order the driver applied it. Tests use this to check the order and
// number of energize events and that both channels are never on together.
type Transition struct {
	Clockwise        bool
	CounterClockwise bool
}

// Mock is an in-memory Driver for tests, grounded in the teacher's
// hal.MockGPIO: it records every write and lets a test assert the resulting
// transcript without any real hardware.
type Mock struct {
	mu sync.Mutex

	cw  bool
	ccw bool

	Transcript []Transition
}

// NewMock returns a Mock with both channels de-energized.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Clockwise(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cw = on
	m.record()
}

func (m *Mock) CounterClockwise(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ccw = on
	m.record()
}

func (m *Mock) record() {
	m.Transcript = append(m.Transcript, Transition{Clockwise: m.cw, CounterClockwise: m.ccw})
}

func (m *Mock) IsClockwise() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cw
}

func (m *Mock) IsCounterClockwise() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ccw
}

func (m *Mock) IsStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.cw && !m.ccw
}
