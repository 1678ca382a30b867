package spotting

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/OCAP2/spotting/internal/icon"
	"github.com/OCAP2/spotting/pkg/core"
)

// Phase is the observation state of an entity, derived from its records.
type Phase string

const (
	Unobserved         Phase = "unobserved"
	SingleTeamObserved Phase = "single-team"
	MultiTeamObserved  Phase = "multi-team"
)

// Waker arms and cancels the single pending expiry wake-up of a target.
type Waker interface {
	Arm(id core.ObjectID, at time.Time)
	Disarm(id core.ObjectID)
}

// Subscriber tracks which targets an observer holds records on.
type Subscriber interface {
	Subscribe(observer, target core.ObjectID)
	Unsubscribe(observer, target core.ObjectID)
}

// EntityDeps are the collaborators an Entity drives. The entity calls them
// while holding its own lock; none of them may call back into the entity.
type EntityDeps struct {
	Waker       Waker
	Subscribers Subscriber
	Sink        icon.Sink
	Clock       clockwork.Clock
	Logger      *slog.Logger
}

type marker struct {
	handle    icon.Handle
	follow    bool
	expiresAt time.Time
	// position last pushed to a snapshot marker
	position core.Position3D
}

// Entity is the observation and marker state of one spottable target.
type Entity struct {
	target Target
	stats  Stats
	deps   EntityDeps

	mu         sync.Mutex
	side       core.Side
	records    []ObservationRecord
	nextWakeAt time.Time
	position   core.Position3D
	markers    map[core.Side]*marker
	multi      bool
	destroyed  bool
}

// NewEntity creates the state for target. It fails when the target kind has
// no stats in the table.
func NewEntity(target Target, table StatsTable, deps EntityDeps) (*Entity, error) {
	stats, err := table.Lookup(target.Kind)
	if err != nil {
		return nil, err
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Entity{
		target:  target,
		stats:   stats,
		deps:    deps,
		side:    target.Side,
		markers: make(map[core.Side]*marker),
	}, nil
}

// ID returns the target ID.
func (e *Entity) ID() core.ObjectID { return e.target.ID }

// Kind returns the target kind.
func (e *Entity) Kind() core.Kind { return e.target.Kind }

// Side returns the side currently owning the target.
func (e *Entity) Side() core.Side {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.side
}

// DefaultDuration is the spot duration used when none is given.
func (e *Entity) DefaultDuration() time.Duration { return e.stats.Duration }

// AddObserver records that observer, on team side, is spotting the target for
// duration (the kind default when duration <= 0). It returns false for an
// invalid side or when the observer already has a live record.
func (e *Entity) AddObserver(observer Spotter, side core.Side, duration time.Duration) bool {
	return e.addObserver(observer, side, duration, nil)
}

// Sighting is what a detection reported about the target.
type Sighting struct {
	Position core.Position3D
	Side     core.Side
}

// Spot adds a record for observer on its own team. The sighting is adopted
// only when the record is accepted, before markers are reconciled, so a
// rejected detection leaves the known position untouched.
func (e *Entity) Spot(observer Spotter, duration time.Duration, seen Sighting) bool {
	if observer == nil {
		return false
	}
	return e.addObserver(observer, observer.Team(), duration, &seen)
}

func (e *Entity) addObserver(observer Spotter, side core.Side, duration time.Duration, seen *Sighting) bool {
	if observer == nil || !side.IsValid() {
		return false
	}
	if duration <= 0 {
		duration = e.stats.Duration
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return false
	}

	now := e.deps.Clock.Now()
	e.sweepAndSettleLocked(now)

	id := observer.SpotterID()
	if e.indexLocked(id) >= 0 {
		e.deps.Logger.Debug("Observer already spotting target", "target", e.target.ID, "observer", id)
		return false
	}

	if seen != nil {
		e.observeLocked(seen.Position, seen.Side)
	}
	e.records = append(e.records, ObservationRecord{
		Observer:  id,
		Side:      side,
		ExpiresAt: now.Add(duration),
		Trackable: observer.IsTrackable(),
	})
	e.deps.Subscribers.Subscribe(id, e.target.ID)
	e.deps.Logger.Debug("Observer added",
		"target", e.target.ID,
		"observer", id,
		"side", side,
		"trackable", observer.IsTrackable(),
		"duration", duration,
	)

	e.settleLocked(now)
	return true
}

// RemoveObserver drops the record held by observer. It returns false when
// there was none.
func (e *Entity) RemoveObserver(observer core.ObjectID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.deps.Clock.Now()
	e.sweepAndSettleLocked(now)

	i := e.indexLocked(observer)
	if i < 0 {
		return false
	}

	e.records = append(e.records[:i], e.records[i+1:]...)
	e.deps.Subscribers.Unsubscribe(observer, e.target.ID)
	e.deps.Logger.Debug("Observer removed", "target", e.target.ID, "observer", observer)

	e.settleLocked(now)
	return true
}

// RemoveAllObservers drops every record and tears down all markers.
func (e *Entity) RemoveAllObservers() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeAllLocked()
}

// destroy tears the entity down for good; later AddObserver calls are rejected.
func (e *Entity) destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeAllLocked()
	e.destroyed = true
}

func (e *Entity) removeAllLocked() {
	for _, r := range e.records {
		e.deps.Subscribers.Unsubscribe(r.Observer, e.target.ID)
	}
	e.records = nil
	e.settleLocked(e.deps.Clock.Now())
}

// Expire removes every record whose expiry is at or before now and re-arms the
// wake-up for the next deadline. Late calls expire everything that is due.
func (e *Entity) Expire(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sweepLocked(now) {
		e.reconcileLocked(now)
	}
	e.rescheduleLocked()
}

// IsLaserTarget reports whether a live marker is currently shown to side.
func (e *Entity) IsLaserTarget(side core.Side) bool {
	now := e.deps.Clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.markers[side]
	return ok && now.Before(m.expiresAt)
}

// NotifyPositionUpdate stores a new known position for the target and moves
// every snapshot marker to it. Following markers are left alone.
func (e *Entity) NotifyPositionUpdate(pos core.Position3D) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sweepAndSettleLocked(e.deps.Clock.Now())

	e.position = pos
	for _, side := range e.markerSidesLocked() {
		m := e.markers[side]
		if !m.follow {
			e.deps.Sink.SetSnapshotPosition(m.handle, e.position)
			m.position = e.position
		}
	}
}

// observeLocked sets the position and side reported with a detection,
// without touching markers.
func (e *Entity) observeLocked(pos core.Position3D, side core.Side) {
	if !pos.IsZero() {
		e.position = pos
	}
	if side.IsValid() {
		e.side = side
	}
}

// Phase returns the current observation state.
func (e *Entity) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return phaseOf(e.records)
}

func phaseOf(records []ObservationRecord) Phase {
	sides := make(map[core.Side]struct{}, len(records))
	for _, r := range records {
		sides[r.Side] = struct{}{}
	}
	switch len(sides) {
	case 0:
		return Unobserved
	case 1:
		return SingleTeamObserved
	default:
		return MultiTeamObserved
	}
}

func (e *Entity) indexLocked(observer core.ObjectID) int {
	for i, r := range e.records {
		if r.Observer == observer {
			return i
		}
	}
	return -1
}

// sweepLocked drops expired records and reports whether any were dropped.
func (e *Entity) sweepLocked(now time.Time) bool {
	kept := e.records[:0]
	removed := false
	for _, r := range e.records {
		if now.Before(r.ExpiresAt) {
			kept = append(kept, r)
			continue
		}
		removed = true
		e.deps.Subscribers.Unsubscribe(r.Observer, e.target.ID)
		e.deps.Logger.Debug("Observation expired", "target", e.target.ID, "observer", r.Observer, "side", r.Side)
	}
	for i := len(kept); i < len(e.records); i++ {
		e.records[i] = ObservationRecord{}
	}
	e.records = kept
	return removed
}

// sweepAndSettleLocked brings markers and the wake-up in line with any records
// that expired since the last mutation.
func (e *Entity) sweepAndSettleLocked(now time.Time) {
	if e.sweepLocked(now) {
		e.settleLocked(now)
	}
}

func (e *Entity) settleLocked(now time.Time) {
	e.reconcileLocked(now)
	e.rescheduleLocked()
}

// rescheduleLocked arms the wake-up for the soonest record expiry, or cancels
// it when no records remain.
func (e *Entity) rescheduleLocked() {
	if len(e.records) == 0 {
		e.nextWakeAt = time.Time{}
		e.deps.Waker.Disarm(e.target.ID)
		return
	}
	next := e.records[0].ExpiresAt
	for _, r := range e.records[1:] {
		if r.ExpiresAt.Before(next) {
			next = r.ExpiresAt
		}
	}
	e.nextWakeAt = next
	e.deps.Waker.Arm(e.target.ID, next)
}

func (e *Entity) markerSidesLocked() []core.Side {
	sides := make([]core.Side, 0, len(e.markers))
	for s := range e.markers {
		sides = append(sides, s)
	}
	sort.Slice(sides, func(i, j int) bool { return sides[i] < sides[j] })
	return sides
}
