// ABOUTME: Bounded, thread-safe history ring
// ABOUTME: Keeps the newest N items and evicts the oldest first
package util

import "sync"

// Ring is a fixed-capacity FIFO that drops its oldest item when full
type Ring[T any] struct {
	mu    sync.Mutex
	items []T
	start int
	size  int
}

// NewRing creates a ring holding at most capacity items (minimum 1)
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{items: make([]T, capacity)}
}

// Push appends item, evicting the oldest when full
func (r *Ring[T]) Push(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := (r.start + r.size) % len(r.items)
	r.items[idx] = item
	if r.size < len(r.items) {
		r.size++
	} else {
		r.start = (r.start + 1) % len(r.items)
	}
}

// Last returns up to n items in insertion order, newest last.
// n <= 0 returns everything held.
func (r *Ring[T]) Last(n int) []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 0 || n > r.size {
		n = r.size
	}
	out := make([]T, 0, n)
	for i := r.size - n; i < r.size; i++ {
		out = append(out, r.items[(r.start+i)%len(r.items)])
	}
	return out
}

// Len returns the number of items held
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Cap returns the ring capacity
func (r *Ring[T]) Cap() int {
	return len(r.items)
}
