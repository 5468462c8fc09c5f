package sse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishReachesAllUserStreams(t *testing.T) {
	hub := NewHub()

	a, cleanupA := hub.Subscribe("user-1")
	defer cleanupA()
	b, cleanupB := hub.Subscribe("user-1")
	defer cleanupB()
	other, cleanupOther := hub.Subscribe("user-2")
	defer cleanupOther()

	hub.Publish("user-1", Event{Event: "notification", Data: "hello"})

	for _, ch := range []chan Event{a, b} {
		select {
		case ev := <-ch:
			assert.Equal(t, "hello", ev.Data)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}

	select {
	case <-other:
		t.Fatal("event leaked to another user")
	default:
	}
}

func TestHubCleanupRemovesSubscriber(t *testing.T) {
	hub := NewHub()

	_, cleanup := hub.Subscribe("user-1")
	require.Equal(t, 1, hub.SubscriberCount("user-1"))

	cleanup()
	assert.Equal(t, 0, hub.SubscriberCount("user-1"))

	// Publishing to a user with no streams is a no-op.
	hub.Publish("user-1", Event{Event: "notification"})
}

func TestHubPublishNeverBlocksOnFullChannel(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe("user-1")
	defer cleanup()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			hub.Publish("user-1", Event{Event: "notification", Data: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full channel")
	}
	assert.NotEmpty(t, ch)
}
