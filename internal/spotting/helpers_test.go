package spotting

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/spotting/internal/cache"
	"github.com/OCAP2/spotting/internal/icon"
	"github.com/OCAP2/spotting/internal/scheduler"
	"github.com/OCAP2/spotting/pkg/core"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStats() StatsTable {
	t := make(StatsTable, len(core.Kinds))
	for _, k := range core.Kinds {
		t[k] = Stats{
			Duration:      10 * time.Second,
			TickFrequency: 250 * time.Millisecond,
			Effect:        "spot_" + k.String(),
			Offset:        core.Position3D{Z: 2},
		}
	}
	return t
}

type entityHarness struct {
	clock  *clockwork.FakeClock
	sink   *icon.Memory
	queue  *scheduler.Queue
	subs   *cache.Subscriptions
	entity *Entity
}

func newEntityHarness(t *testing.T, target Target) *entityHarness {
	t.Helper()
	h := &entityHarness{
		clock: clockwork.NewFakeClock(),
		queue: scheduler.New(),
		subs:  cache.NewSubscriptions(),
	}
	h.sink = icon.NewMemory(h.clock)

	e, err := NewEntity(target, testStats(), EntityDeps{
		Waker:       h.queue,
		Subscribers: h.subs,
		Sink:        h.sink,
		Clock:       h.clock,
		Logger:      discardLogger(),
	})
	require.NoError(t, err)
	h.entity = e
	return h
}

// expire runs the entity's wake-up the way the registry tick does.
func (h *entityHarness) expire() {
	now := h.clock.Now()
	for _, id := range h.queue.PopDue(now) {
		if id == h.entity.ID() {
			h.entity.Expire(now)
		}
	}
}

type notifications struct {
	mu     sync.Mutex
	events []core.SpotEvent
}

func (n *notifications) Notify(e core.SpotEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *notifications) all() []core.SpotEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]core.SpotEvent(nil), n.events...)
}

type registryHarness struct {
	clock    *clockwork.FakeClock
	sink     *icon.Memory
	notified *notifications
	registry *Registry
}

func newRegistryHarness(t *testing.T, relations Relations) *registryHarness {
	t.Helper()
	h := &registryHarness{
		clock:    clockwork.NewFakeClock(),
		notified: &notifications{},
	}
	h.sink = icon.NewMemory(h.clock)

	r, err := NewRegistry(Dependencies{
		Stats:     testStats(),
		Sink:      h.sink,
		Relations: relations,
		Notifier:  h.notified,
		Clock:     h.clock,
		Logger:    discardLogger(),
	})
	require.NoError(t, err)
	h.registry = r
	return h
}
