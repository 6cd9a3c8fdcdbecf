package observe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestBroadcaster_ReplaysLatestOnObserve(t *testing.T) {
	b := NewBroadcaster[int]()
	b.Publish(1)
	b.Publish(2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Observe(ctx)
	assert.Equal(t, 2, recv(t, ch))
}

func TestBroadcaster_SlowObserverSeesOnlyLatest(t *testing.T) {
	b := NewBroadcaster[string]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Observe(ctx)
	b.Publish("a")
	b.Publish("b")
	b.Publish("c")

	assert.Equal(t, "c", recv(t, ch))
	v, ok := b.Latest()
	assert.True(t, ok)
	assert.Equal(t, "c", v)
}

func TestBroadcaster_ClosesOnCancel(t *testing.T) {
	b := NewBroadcaster[int]()
	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Observe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("observer channel not closed")
	}

	// publishing after the observer left must not block or panic
	b.Publish(7)
}
