package motor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMock_StartsStopped(t *testing.T) {
	m := NewMock()
	assert.True(t, m.IsStopped())
	assert.False(t, m.IsClockwise())
	assert.False(t, m.IsCounterClockwise())
}

func TestMock_ClockwiseRecordsTransition(t *testing.T) {
	m := NewMock()
	m.Clockwise(true)
	assert.True(t, m.IsClockwise())
	assert.False(t, m.IsStopped())

	assert.Len(t, m.Transcript, 1)
	assert.True(t, m.Transcript[0].Clockwise)
	assert.False(t, m.Transcript[0].CounterClockwise)
}

func TestMock_SwitchingDirectionNeverOverlaps(t *testing.T) {
	m := NewMock()
	m.Clockwise(true)
	m.Clockwise(false)
	m.CounterClockwise(true)

	assert.False(t, m.IsClockwise())
	assert.True(t, m.IsCounterClockwise())

	for i, tr := range m.Transcript {
		assert.False(t, tr.Clockwise && tr.CounterClockwise, "transcript entry %d energized both channels", i)
	}
}
