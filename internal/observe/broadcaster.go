// Package observe provides a latest-value broadcaster used to model the
// "stream that re-emits on every change" sources of the directory.
package observe

import (
	"context"
	"sync"
)

// Broadcaster fans out the latest published value. Slow observers never
// block Publish; they only ever see the most recent value.
type Broadcaster[T any] struct {
	mu     sync.Mutex
	has    bool
	latest T
	subs   map[int]chan T
	nextID int
}

func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[int]chan T)}
}

// Publish replaces the latest value and notifies every observer.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.latest = v
	b.has = true
	for _, ch := range b.subs {
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

// Latest returns the most recently published value.
func (b *Broadcaster[T]) Latest() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, b.has
}

// Observe returns a channel that first yields the current value (if any) and
// then every later one. The channel is closed once ctx is done.
func (b *Broadcaster[T]) Observe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	if b.has {
		ch <- b.latest
	}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(ch)
		b.mu.Unlock()
	}()

	return ch
}
