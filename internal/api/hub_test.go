package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkroom/agitator/internal/interpreter"
)

func TestHub_RegisterThenBroadcastDeliversToClient(t *testing.T) {
	h := newHub()
	go h.run()

	c := &wsClient{id: "c1", send: make(chan wsMessage, 4)}
	h.register <- c

	h.broadcastSnapshot(interpreter.Snapshot{ProcessName: "c41"})

	select {
	case msg := <-c.send:
		assert.Equal(t, "snapshot", msg.Type)
		assert.Equal(t, "c41", msg.Snapshot.ProcessName)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast delivery")
	}
}

func TestHub_UnregisterClosesSendChannel(t *testing.T) {
	h := newHub()
	go h.run()

	c := &wsClient{id: "c1", send: make(chan wsMessage, 4)}
	h.register <- c
	h.unregister <- c

	// Give the hub goroutine a chance to process the unregister before we
	// assert the channel was closed.
	require.Eventually(t, func() bool {
		_, open := <-c.send
		return !open
	}, time.Second, time.Millisecond)
}

func TestHub_BroadcastToNoClientsDoesNotBlock(t *testing.T) {
	h := newHub()
	go h.run()

	assert.NotPanics(t, func() {
		h.broadcastSnapshot(interpreter.Snapshot{})
	})
}

func TestHub_SlowClientDoesNotBlockOtherDeliveries(t *testing.T) {
	h := newHub()
	go h.run()

	slow := &wsClient{id: "slow", send: make(chan wsMessage)} // unbuffered, never drained
	fast := &wsClient{id: "fast", send: make(chan wsMessage, 4)}
	h.register <- slow
	h.register <- fast

	h.broadcastSnapshot(interpreter.Snapshot{ProcessName: "bw-standard"})

	select {
	case msg := <-fast.send:
		assert.Equal(t, "bw-standard", msg.Snapshot.ProcessName)
	case <-time.After(time.Second):
		t.Fatal("fast client never received broadcast; slow client must have blocked it")
	}
}

func TestNextClientID_IsUnique(t *testing.T) {
	a := nextClientID()
	b := nextClientID()
	assert.NotEqual(t, a, b)
}
