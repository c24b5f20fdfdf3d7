// Package observe provides a small in-process pub/sub hub used to expose
// state changes to observers without letting them mutate anything.
package observe

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultBufferSize is the default per-subscriber channel buffer
const DefaultBufferSize = 16

// Hub broadcasts values of type T to subscribers.
// Slow subscribers are skipped rather than blocking the publisher.
type Hub[T any] struct {
	mu      sync.RWMutex
	streams map[string]chan T
	closed  bool
}

// NewHub creates an empty hub
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{streams: map[string]chan T{}}
}

// Publish delivers v to every subscriber with room in its buffer
func (h *Hub[T]) Publish(v T) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.streams {
		select {
		case ch <- v:
		default:
		}
	}
}

// Subscribe registers a subscriber. The returned cancel function is idempotent
// and closes the channel.
func (h *Hub[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	ch := make(chan T, buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := uuid.NewString()
	h.streams[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if current, ok := h.streams[id]; ok {
				delete(h.streams, id)
				close(current)
			}
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Close closes every subscriber channel. Later subscriptions get a closed channel.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.streams {
		delete(h.streams, id)
		close(ch)
	}
}

// Len returns the number of active subscribers
func (h *Hub[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams)
}
