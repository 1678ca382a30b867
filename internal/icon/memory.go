package icon

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/OCAP2/spotting/pkg/core"
)

// Icon is the state of one icon held by a Memory sink.
type Icon struct {
	Spec
	ExpiresAt time.Time
}

// Memory keeps every live icon in memory. It is the authoritative local view
// used by the status monitor and by tests.
type Memory struct {
	clock clockwork.Clock
	mu    sync.RWMutex
	icons map[Handle]*Icon
}

// NewMemory creates an empty Memory sink.
func NewMemory(clock clockwork.Clock) *Memory {
	return &Memory{
		clock: clock,
		icons: make(map[Handle]*Icon),
	}
}

func (m *Memory) Create(spec Spec) Handle {
	assignHandle(&spec)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.icons[spec.Handle] = &Icon{Spec: spec, ExpiresAt: m.clock.Now().Add(spec.Lifetime)}
	return spec.Handle
}

func (m *Memory) KeepAlive(h Handle, lifetime time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ic, ok := m.icons[h]; ok {
		ic.Lifetime = lifetime
		ic.ExpiresAt = m.clock.Now().Add(lifetime)
	}
}

func (m *Memory) SetSnapshotPosition(h Handle, pos core.Position3D) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ic, ok := m.icons[h]; ok {
		ic.Position = pos
	}
}

func (m *Memory) Remove(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.icons, h)
}

// Get returns a copy of the icon with handle h.
func (m *Memory) Get(h Handle) (Icon, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ic, ok := m.icons[h]
	if !ok {
		return Icon{}, false
	}
	return *ic, true
}

// Count returns the number of icons held, expired or not.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.icons)
}

// ForTarget returns the icons bound to target, ordered by side.
func (m *Memory) ForTarget(target core.ObjectID) []Icon {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Icon
	for _, ic := range m.icons {
		if ic.TargetID == target {
			out = append(out, *ic)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Side < out[j].Side })
	return out
}

// Live returns the icons whose lifetime has not run out.
func (m *Memory) Live() []Icon {
	now := m.clock.Now()
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Icon
	for _, ic := range m.icons {
		if now.Before(ic.ExpiresAt) {
			out = append(out, *ic)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TargetID != out[j].TargetID {
			return out[i].TargetID < out[j].TargetID
		}
		return out[i].Side < out[j].Side
	})
	return out
}

// CountBySide returns the number of live icons shown to each side.
func (m *Memory) CountBySide() map[core.Side]int {
	out := make(map[core.Side]int)
	for _, ic := range m.Live() {
		out[ic.Side]++
	}
	return out
}
