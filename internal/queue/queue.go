// Package queue holds journal rows between writer cycles.
package queue

import (
	"sync"
	"sync/atomic"
)

// Queue is a generic thread-safe FIFO. A bounded queue drops the oldest rows
// once full so a dead database cannot grow memory without limit.
type Queue[T any] struct {
	mu      sync.Mutex
	items   []T
	max     int
	dropped atomic.Int64
}

// New creates a new empty unbounded queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		items: make([]T, 0),
	}
}

// NewBounded creates a queue holding at most max items.
func NewBounded[T any](max int) *Queue[T] {
	q := New[T]()
	q.max = max
	return q
}

// Push appends items to the queue.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
	q.trimLocked()
}

// Requeue puts items back at the head of the queue, ahead of anything pushed
// since they were taken, so rows stay in time order after a failed write.
func (q *Queue[T]) Requeue(items ...T) {
	if len(items) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(append(make([]T, 0, len(items)+len(q.items)), items...), q.items...)
	q.trimLocked()
}

func (q *Queue[T]) trimLocked() {
	if q.max <= 0 || len(q.items) <= q.max {
		return
	}
	over := len(q.items) - q.max
	q.dropped.Add(int64(over))
	q.items = append(q.items[:0:0], q.items[over:]...)
}

// Pop removes and returns the first item. Returns the zero value if empty.
func (q *Queue[T]) Pop() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	if len(q.items) == 0 {
		return zero
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item
}

// Empty returns true if the queue has no items.
func (q *Queue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped returns how many items a bounded queue has discarded.
func (q *Queue[T]) Dropped() int64 {
	return q.dropped.Load()
}

// Clear removes all items from the queue.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = make([]T, 0)
}

// Drain removes and returns up to n of the oldest items; n <= 0 takes everything.
func (q *Queue[T]) Drain(n int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n <= 0 || n >= len(q.items) {
		items := q.items
		q.items = make([]T, 0)
		return items
	}
	items := append([]T(nil), q.items[:n]...)
	q.items = append(q.items[:0:0], q.items[n:]...)
	return items
}

// GetAndEmpty returns all items and clears the queue atomically.
func (q *Queue[T]) GetAndEmpty() []T {
	return q.Drain(0)
}
