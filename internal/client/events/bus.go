// Package events is a small typed publish/subscribe hub.
//
// Publish never blocks: each subscriber owns a buffered channel and a value
// that does not fit is dropped for that subscriber and counted. Slow readers
// therefore lose notifications instead of stalling the publisher.
package events

import (
	"sync"
	"sync/atomic"
)

type Bus[T any] struct {
	mu      sync.RWMutex
	subs    map[int]chan T
	next    int
	closed  bool
	dropped atomic.Int64
}

func NewBus[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[int]chan T)}
}

// Subscribe registers a listener with the given buffer size. The returned
// function unsubscribes and closes the channel; calling it twice is safe.
func (b *Bus[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan T, buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- v:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped reports how many deliveries were discarded because a subscriber
// buffer was full.
func (b *Bus[T]) Dropped() int64 {
	return b.dropped.Load()
}

func (b *Bus[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close unsubscribes everybody. Later Subscribe calls get a closed channel.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
