package spotting

import (
	"sort"
	"time"

	"github.com/OCAP2/spotting/internal/icon"
	"github.com/OCAP2/spotting/pkg/core"
)

// partition is the consolidated view of all records held by one team.
type partition struct {
	latest time.Time
	follow bool
}

func partitionRecords(records []ObservationRecord) map[core.Side]partition {
	parts := make(map[core.Side]partition, len(records))
	for _, r := range records {
		p := parts[r.Side]
		if r.ExpiresAt.After(p.latest) {
			p.latest = r.ExpiresAt
		}
		p.follow = p.follow || r.Trackable
		parts[r.Side] = p
	}
	return parts
}

func sortedSides(parts map[core.Side]partition) []core.Side {
	sides := make([]core.Side, 0, len(parts))
	for s := range parts {
		sides = append(sides, s)
	}
	sort.Slice(sides, func(i, j int) bool { return sides[i] < sides[j] })
	return sides
}

// reconcileLocked derives the marker set from the current records: none when
// there are no records, one marker while a single team observes, one marker
// per team otherwise. Switching between single and multi-team mode rebuilds
// every marker.
func (e *Entity) reconcileLocked(now time.Time) {
	parts := partitionRecords(e.records)

	multi := len(parts) > 1
	if len(parts) == 0 || multi != e.multi {
		e.clearMarkersLocked()
	}
	e.multi = multi

	for _, side := range e.markerSidesLocked() {
		if _, ok := parts[side]; !ok {
			e.removeMarkerLocked(side)
		}
	}

	for _, side := range sortedSides(parts) {
		p := parts[side]
		lifetime := p.latest.Sub(now)
		m, ok := e.markers[side]
		switch {
		case ok && m.follow == p.follow:
			e.deps.Sink.KeepAlive(m.handle, lifetime)
			m.expiresAt = p.latest
			if !m.follow && m.position != e.position {
				e.deps.Sink.SetSnapshotPosition(m.handle, e.position)
				m.position = e.position
			}
		case ok:
			e.removeMarkerLocked(side)
			e.createMarkerLocked(side, p, lifetime)
		default:
			e.createMarkerLocked(side, p, lifetime)
		}
	}
}

func (e *Entity) createMarkerLocked(side core.Side, p partition, lifetime time.Duration) {
	h := e.deps.Sink.Create(icon.Spec{
		TargetID: e.target.ID,
		Side:     side,
		Follow:   p.follow,
		Position: e.position,
		Offset:   e.stats.Offset,
		Effect:   e.stats.Effect,
		Lifetime: lifetime,
		TickRate: e.stats.TickFrequency,
	})
	e.markers[side] = &marker{handle: h, follow: p.follow, expiresAt: p.latest, position: e.position}
	e.deps.Logger.Debug("Marker created",
		"target", e.target.ID,
		"side", side,
		"follow", p.follow,
		"lifetime", lifetime,
		"multi", e.multi,
	)
}

func (e *Entity) removeMarkerLocked(side core.Side) {
	m, ok := e.markers[side]
	if !ok {
		return
	}
	e.deps.Sink.Remove(m.handle)
	delete(e.markers, side)
	e.deps.Logger.Debug("Marker removed", "target", e.target.ID, "side", side)
}

func (e *Entity) clearMarkersLocked() {
	for _, side := range e.markerSidesLocked() {
		e.removeMarkerLocked(side)
	}
}
