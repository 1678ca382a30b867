package cache

import (
	"sort"
	"sync"

	"github.com/OCAP2/spotting/pkg/core"
)

// Subscriptions indexes which targets each observer currently holds a record on,
// so an observer's removal can be forwarded to exactly those targets
type Subscriptions struct {
	mu        sync.RWMutex
	observers map[core.ObjectID]map[core.ObjectID]struct{}
}

// NewSubscriptions creates a new Subscriptions index
func NewSubscriptions() *Subscriptions {
	return &Subscriptions{
		observers: make(map[core.ObjectID]map[core.ObjectID]struct{}),
	}
}

// Subscribe records that observer holds a record on target
func (c *Subscriptions) Subscribe(observer, target core.ObjectID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	targets, ok := c.observers[observer]
	if !ok {
		targets = make(map[core.ObjectID]struct{})
		c.observers[observer] = targets
	}
	targets[target] = struct{}{}
}

// Unsubscribe removes the observer/target pair
func (c *Subscriptions) Unsubscribe(observer, target core.ObjectID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	targets, ok := c.observers[observer]
	if !ok {
		return
	}
	delete(targets, target)
	if len(targets) == 0 {
		delete(c.observers, observer)
	}
}

// Targets returns the targets observer holds records on, in ascending order
func (c *Subscriptions) Targets(observer core.ObjectID) []core.ObjectID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	targets := c.observers[observer]
	out := make([]core.ObjectID, 0, len(targets))
	for id := range targets {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Observers returns the number of observers with at least one subscription
func (c *Subscriptions) Observers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.observers)
}

// Reset clears all subscriptions
func (c *Subscriptions) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = make(map[core.ObjectID]map[core.ObjectID]struct{})
}
