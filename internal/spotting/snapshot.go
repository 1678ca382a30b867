package spotting

import (
	"time"

	"github.com/OCAP2/spotting/internal/icon"
	"github.com/OCAP2/spotting/pkg/core"
)

// MarkerSnapshot is the state of one marker owned by an entity.
type MarkerSnapshot struct {
	Handle    icon.Handle `json:"handle"`
	Side      core.Side   `json:"side"`
	Follow    bool        `json:"follow"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// EntitySnapshot is a point-in-time copy of an entity's state.
type EntitySnapshot struct {
	Target     Target              `json:"target"`
	Phase      Phase               `json:"phase"`
	Records    []ObservationRecord `json:"records"`
	Markers    []MarkerSnapshot    `json:"markers"`
	NextWakeAt time.Time           `json:"nextWakeAt"`
	Position   core.Position3D     `json:"position"`
}

// Snapshot copies the current state. Markers are ordered by side.
func (e *Entity) Snapshot() EntitySnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	target := e.target
	target.Side = e.side

	s := EntitySnapshot{
		Target:     target,
		Phase:      phaseOf(e.records),
		Records:    append([]ObservationRecord(nil), e.records...),
		Markers:    make([]MarkerSnapshot, 0, len(e.markers)),
		NextWakeAt: e.nextWakeAt,
		Position:   e.position,
	}
	for _, side := range e.markerSidesLocked() {
		m := e.markers[side]
		s.Markers = append(s.Markers, MarkerSnapshot{
			Handle:    m.handle,
			Side:      side,
			Follow:    m.follow,
			ExpiresAt: m.expiresAt,
		})
	}
	return s
}
