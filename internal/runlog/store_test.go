package runlog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runlog.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_AppendAndEventsForRun(t *testing.T) {
	s := openTestStore(t)

	now := time.Now()
	require.NoError(t, s.Append(Event{
		RunID: "run-1", ProcessName: "C41", StepIndex: 0, StepName: "Pre-Wash",
		Kind: "Active", OccurredAt: now,
	}))
	require.NoError(t, s.Append(Event{
		RunID: "run-1", ProcessName: "C41", StepIndex: 0, StepName: "Pre-Wash",
		Kind: "AwaitingUser", Detail: "Pre-wash complete. Ready for developer?", OccurredAt: now.Add(time.Second),
	}))
	require.NoError(t, s.Append(Event{
		RunID: "run-2", ProcessName: "Stand", StepIndex: 1, StepName: "Long Stand",
		Kind: "Done", OccurredAt: now,
	}))

	events, err := s.EventsForRun("run-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Active", events[0].Kind)
	assert.Equal(t, "AwaitingUser", events[1].Kind)
	assert.Equal(t, "Pre-wash complete. Ready for developer?", events[1].Detail)
}

func TestStore_EventsForUnknownRunIsEmpty(t *testing.T) {
	s := openTestStore(t)

	events, err := s.EventsForRun("never-seen")
	require.NoError(t, err)
	assert.Empty(t, events)
}
