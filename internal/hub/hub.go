// Package hub implements a latest-value-wins publish/subscribe hub.
//
// Each subscriber owns a delivery queue of depth one. Publishing to a
// subscriber that has not consumed the previous value replaces it, so a slow
// or stuck consumer always observes the most recent value and never delays
// the publisher.
package hub

import "sync"

// Hub fans values of type T out to live subscribers.
type Hub[T any] struct {
	mu     sync.Mutex
	subs   []chan T
	closed bool
}

// New creates a new Hub.
func New[T any]() *Hub[T] { return &Hub[T]{} }

// Publish delivers the value to every subscriber without blocking. A
// subscriber whose queue is full has its stale value dropped and replaced.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for _, ch := range h.subs {
		select {
		case ch <- v:
		default:
			// Queue full: evict the stale value, then retry once. The
			// second send can only fail if the subscriber consumed and a
			// concurrent publisher refilled in between, in which case the
			// newer value is already there.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

// Subscribe registers a subscriber and returns its channel. Values published
// before the call are not replayed.
func (h *Hub[T]) Subscribe() <-chan T {
	ch := make(chan T, 1)
	h.mu.Lock()
	if h.closed {
		close(ch)
	} else {
		h.subs = append(h.subs, ch)
	}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (h *Hub[T]) Unsubscribe(sub <-chan T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, ch := range h.subs {
		if ch == sub {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			if !h.closed {
				close(ch)
			}
			return
		}
	}
}

// Close closes all subscriber channels and clears the list.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for _, ch := range h.subs {
		close(ch)
	}
	h.subs = nil
	h.mu.Unlock()
}
