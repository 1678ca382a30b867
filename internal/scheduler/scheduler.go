// Package scheduler keeps one pending expiry wake-up per spotted target,
// ordered by deadline, so the engine wakes only when a record can actually expire.
package scheduler

import (
	"container/heap"
	"sync"
	"time"

	"github.com/OCAP2/spotting/pkg/core"
)

type wakeup struct {
	id  core.ObjectID
	at  time.Time
	pos int
}

type wakeHeap []*wakeup

func (h wakeHeap) Len() int { return len(h) }

// Less orders by deadline, then by target ID so equal deadlines pop deterministically.
func (h wakeHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].id < h[j].id
	}
	return h[i].at.Before(h[j].at)
}
func (h wakeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].pos = i
	h[j].pos = j
}

func (h *wakeHeap) Push(x any) {
	w := x.(*wakeup)
	w.pos = len(*h)
	*h = append(*h, w)
}

func (h *wakeHeap) Pop() any {
	old := *h
	n := len(old)
	w := old[n-1]
	old[n-1] = nil
	w.pos = -1
	*h = old[:n-1]
	return w
}

// Queue is a thread-safe min-heap of (deadline, target) pairs.
type Queue struct {
	mu      sync.Mutex
	items   wakeHeap
	index   map[core.ObjectID]*wakeup
	changed chan struct{}
}

// New creates an empty Queue.
func New() *Queue {
	return &Queue{
		index:   make(map[core.ObjectID]*wakeup),
		changed: make(chan struct{}, 1),
	}
}

// Arm sets the pending wake-up for id to at, replacing any earlier arming.
func (q *Queue) Arm(id core.ObjectID, at time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if w, ok := q.index[id]; ok {
		w.at = at
		heap.Fix(&q.items, w.pos)
	} else {
		w = &wakeup{id: id, at: at}
		heap.Push(&q.items, w)
		q.index[id] = w
	}

	if q.items[0].id == id {
		q.signal()
	}
}

// Disarm cancels the pending wake-up for id, if any.
func (q *Queue) Disarm(id core.ObjectID) {
	q.mu.Lock()
	defer q.mu.Unlock()

	w, ok := q.index[id]
	if !ok {
		return
	}
	heap.Remove(&q.items, w.pos)
	delete(q.index, id)
}

// Deadline returns the pending wake-up time for id.
func (q *Queue) Deadline(id core.ObjectID) (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	w, ok := q.index[id]
	if !ok {
		return time.Time{}, false
	}
	return w.at, true
}

// Next returns the earliest pending deadline.
func (q *Queue) Next() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return time.Time{}, false
	}
	return q.items[0].at, true
}

// PopDue removes and returns every target whose deadline is at or before now,
// earliest first. Deadlines that fired late are still returned.
func (q *Queue) PopDue(now time.Time) []core.ObjectID {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []core.ObjectID
	for len(q.items) > 0 && !q.items[0].at.After(now) {
		w := heap.Pop(&q.items).(*wakeup)
		delete(q.index, w.id)
		due = append(due, w.id)
	}
	return due
}

// Len returns the number of pending wake-ups.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Reset drops every pending wake-up.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	q.index = make(map[core.ObjectID]*wakeup)
}

// Changed receives a value whenever a new earliest deadline is armed.
// Cancellations are not signalled; a waiter on a disarmed deadline wakes
// once and finds nothing due.
func (q *Queue) Changed() <-chan struct{} {
	return q.changed
}

func (q *Queue) signal() {
	select {
	case q.changed <- struct{}{}:
	default:
	}
}
