package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe("sub1")

	b.PublishReviewStarted("https://example.com", "ses-abc123", "quality-craft")

	select {
	case evt := <-ch:
		assert.Equal(t, TypeReviewStarted, evt.Type)
	case <-time.After(time.Second):
		t.Fatal("expected event was not delivered")
	}
}

func TestPublishNeverBlocksOnFullSubscriberBuffer(t *testing.T) {
	b := NewBus()
	_ = b.Subscribe("slow")

	for i := 0; i < 200; i++ {
		b.Publish(TypeCaptureModeChanged, CaptureModeChangedPayload{Enabled: i%2 == 0})
	}
	// no assertion needed beyond "this returns without blocking"
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe("sub1")
	b.Unsubscribe("sub1")

	_, open := <-ch
	assert.False(t, open)
}

func TestEventIDsAreMonotonic(t *testing.T) {
	b := NewBus()
	e1 := b.Publish(TypeCaptureModeChanged, nil)
	e2 := b.Publish(TypeCaptureModeChanged, nil)
	require.Greater(t, e2.ID, e1.ID)
}
