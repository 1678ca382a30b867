// Package memory keeps the session journal in memory and exports it as JSON
// when the session ends.
package memory

import (
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/OCAP2/spotting/internal/config"
	"github.com/OCAP2/spotting/pkg/core"
)

// Backend stores session data in memory and exports to JSON
type Backend struct {
	cfg   config.MemoryConfig
	clock clockwork.Clock

	session *core.Session
	spots   []core.SpotEvent
	markers []core.MarkerEvent

	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig, clock clockwork.Clock) *Backend {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Backend{
		cfg:   cfg,
		clock: clock,
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSession begins a new journal, discarding anything not yet exported
func (b *Backend) StartSession(s *core.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	s.ID = b.idCounter
	if s.StartTime.IsZero() {
		s.StartTime = b.clock.Now()
	}

	copied := *s
	b.session = &copied
	b.spots = nil
	b.markers = nil
	return nil
}

// EndSession exports the journal. Without an active session it is a no-op.
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return nil
	}
	err := b.exportJSON(b.clock.Now())
	b.session = nil
	return err
}

// RecordSpot appends a spot to the journal
func (b *Backend) RecordSpot(e *core.SpotEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.spots = append(b.spots, *e)
	return nil
}

// RecordMarker appends a marker lifecycle step to the journal
func (b *Backend) RecordMarker(e *core.MarkerEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.markers = append(b.markers, *e)
	return nil
}

// GetExportedFilePath returns the path of the last export
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// Spots returns a copy of the journalled spots
func (b *Backend) Spots() []core.SpotEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]core.SpotEvent(nil), b.spots...)
}

// Markers returns a copy of the journalled marker steps
func (b *Backend) Markers() []core.MarkerEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]core.MarkerEvent(nil), b.markers...)
}

// Session returns the active session, if any
func (b *Backend) Session() (core.Session, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.session == nil {
		return core.Session{}, false
	}
	return *b.session, true
}
