// Package spotting tracks which observers are spotting which targets, expires
// those observations and keeps the resulting world markers consistent.
package spotting

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/OCAP2/spotting/internal/cache"
	"github.com/OCAP2/spotting/internal/icon"
	"github.com/OCAP2/spotting/internal/scheduler"
	"github.com/OCAP2/spotting/pkg/core"
)

// Relations answers whether two sides are hostile.
type Relations interface {
	IsOpponent(a, b core.Side) bool
}

// Notifier receives successful spots. Delivery is fire-and-forget.
type Notifier interface {
	Notify(e core.SpotEvent)
}

type nopNotifier struct{}

func (nopNotifier) Notify(core.SpotEvent) {}

// Hit is a classified detection of a target by an observer.
type Hit struct {
	TargetID core.ObjectID
	HitKind  string
	Side     core.Side
	Position core.Position3D
	// Duration overrides the kind default when positive.
	Duration time.Duration
}

// Dependencies holds the collaborators of a Registry.
type Dependencies struct {
	Stats     StatsTable
	Sink      icon.Sink
	Relations Relations
	Notifier  Notifier
	Clock     clockwork.Clock
	Logger    *slog.Logger
}

// Registry owns every spottable entity, converts detections into
// observations and drives expiry.
type Registry struct {
	stats     StatsTable
	sink      icon.Sink
	relations Relations
	notifier  Notifier
	clock     clockwork.Clock
	logger    *slog.Logger

	queue *scheduler.Queue
	subs  *cache.Subscriptions

	mu       sync.RWMutex
	entities map[core.ObjectID]*Entity

	spots    atomic.Int64
	rejected atomic.Int64
}

// NewRegistry creates a Registry. The stats table is validated up front so a
// missing kind fails here rather than on the first spot.
func NewRegistry(deps Dependencies) (*Registry, error) {
	if err := deps.Stats.Validate(); err != nil {
		return nil, err
	}
	if deps.Sink == nil {
		return nil, errors.New("spotting registry requires an icon sink")
	}
	if deps.Relations == nil {
		return nil, errors.New("spotting registry requires side relations")
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Registry{
		stats:     deps.Stats,
		sink:      deps.Sink,
		relations: deps.Relations,
		notifier:  deps.Notifier,
		clock:     deps.Clock,
		logger:    deps.Logger,
		queue:     scheduler.New(),
		subs:      cache.NewSubscriptions(),
		entities:  make(map[core.ObjectID]*Entity),
	}, nil
}

// RegisterTarget returns the entity for target, creating it on first use.
func (r *Registry) RegisterTarget(target Target) (*Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entities[target.ID]; ok {
		return e, nil
	}

	e, err := NewEntity(target, r.stats, EntityDeps{
		Waker:       r.queue,
		Subscribers: r.subs,
		Sink:        r.sink,
		Clock:       r.clock,
		Logger:      r.logger,
	})
	if err != nil {
		return nil, err
	}
	r.entities[target.ID] = e
	r.logger.Debug("Target registered", "target", target.ID, "kind", target.Kind, "side", target.Side)
	return e, nil
}

// Entity returns the registered entity for id.
func (r *Registry) Entity(id core.ObjectID) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entities[id]
	return e, ok
}

// TryAcquireSpot turns a detection into an observation. It returns false for
// unsupported hit kinds, non-hostile targets and observers already spotting
// the target.
func (r *Registry) TryAcquireSpot(observer Spotter, hit Hit) bool {
	if observer == nil {
		return false
	}

	kind, ok := core.ClassifyHit(hit.HitKind)
	if !ok {
		r.reject("unsupported hit kind", observer, hit)
		return false
	}
	if !r.relations.IsOpponent(observer.Team(), hit.Side) {
		r.reject("target is not an opponent", observer, hit)
		return false
	}

	e, ok := r.Entity(hit.TargetID)
	if !ok {
		var err error
		e, err = r.RegisterTarget(Target{ID: hit.TargetID, Kind: kind, Side: hit.Side})
		if err != nil {
			r.logger.Error("Failed to register spotted target", "target", hit.TargetID, "kind", kind, "error", err)
			return false
		}
	}

	duration := hit.Duration
	if duration <= 0 {
		duration = e.DefaultDuration()
	}
	if !e.Spot(observer, duration, Sighting{Position: hit.Position, Side: hit.Side}) {
		r.reject("already spotted by observer", observer, hit)
		return false
	}

	r.spots.Add(1)
	r.notifier.Notify(core.SpotEvent{
		Time:         r.clock.Now(),
		TargetID:     hit.TargetID,
		TargetKind:   e.Kind(),
		TargetSide:   hit.Side,
		ObserverID:   observer.SpotterID(),
		ObserverSide: observer.Team(),
		Trackable:    observer.IsTrackable(),
		Duration:     duration,
		Position:     hit.Position,
	})
	return true
}

func (r *Registry) reject(reason string, observer Spotter, hit Hit) {
	r.rejected.Add(1)
	r.logger.Debug("Spot rejected",
		"reason", reason,
		"observer", observer.SpotterID(),
		"observerSide", observer.Team(),
		"target", hit.TargetID,
		"targetSide", hit.Side,
		"hitKind", hit.HitKind,
	)
}

// DeregisterTarget removes a destroyed target. Its markers are torn down and
// any records it held as an observer on other targets are dropped.
func (r *Registry) DeregisterTarget(id core.ObjectID) bool {
	r.mu.Lock()
	e, ok := r.entities[id]
	delete(r.entities, id)
	r.mu.Unlock()

	if ok {
		e.destroy()
		r.logger.Debug("Target deregistered", "target", id)
	}
	r.RemoveObserver(id)
	return ok
}

// Unspot removes observer's record on target.
func (r *Registry) Unspot(observer, target core.ObjectID) bool {
	e, ok := r.Entity(target)
	if !ok {
		return false
	}
	return e.RemoveObserver(observer)
}

// RemoveObserver forwards an observer's removal to every target it holds a
// record on and returns how many records were dropped.
func (r *Registry) RemoveObserver(observer core.ObjectID) int {
	removed := 0
	for _, target := range r.subs.Targets(observer) {
		e, ok := r.Entity(target)
		if !ok {
			r.subs.Unsubscribe(observer, target)
			continue
		}
		if e.RemoveObserver(observer) {
			removed++
		}
	}
	return removed
}

// IsLaserTarget reports whether target currently shows a live marker to side.
func (r *Registry) IsLaserTarget(target core.ObjectID, side core.Side) bool {
	e, ok := r.Entity(target)
	if !ok {
		return false
	}
	return e.IsLaserTarget(side)
}

// NotifyPositionUpdate pushes a new known position to target's snapshot markers.
func (r *Registry) NotifyPositionUpdate(target core.ObjectID, pos core.Position3D) bool {
	e, ok := r.Entity(target)
	if !ok {
		return false
	}
	e.NotifyPositionUpdate(pos)
	return true
}

// Tick expires every entity whose wake-up is due and returns how many were woken.
func (r *Registry) Tick() int {
	now := r.clock.Now()
	due := r.queue.PopDue(now)
	for _, id := range due {
		if e, ok := r.Entity(id); ok {
			e.Expire(now)
		}
	}
	return len(due)
}

// Run drives expiry until ctx is done. A single timer is kept armed to the
// earliest pending deadline and re-armed whenever a sooner one appears.
func (r *Registry) Run(ctx context.Context) error {
	timer := r.clock.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		if next, ok := r.queue.Next(); ok {
			d := next.Sub(r.clock.Now())
			if d < 0 {
				d = 0
			}
			timer.Reset(d)
		} else {
			timer.Stop()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.queue.Changed():
		case <-timer.Chan():
			r.Tick()
		}
	}
}

// Reset destroys every entity and pending wake-up, for a new session.
func (r *Registry) Reset() {
	r.mu.Lock()
	entities := r.entities
	r.entities = make(map[core.ObjectID]*Entity)
	r.mu.Unlock()

	for _, e := range entities {
		e.destroy()
	}
	r.queue.Reset()
	r.subs.Reset()
}

// RemoveAllObservers drops every record on every entity, keeping the targets registered.
func (r *Registry) RemoveAllObservers() {
	for _, e := range r.snapshotEntities() {
		e.RemoveAllObservers()
	}
}

func (r *Registry) snapshotEntities() []*Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entity, 0, len(r.entities))
	for _, e := range r.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Snapshots returns the state of every registered entity, ordered by target ID.
func (r *Registry) Snapshots() []EntitySnapshot {
	entities := r.snapshotEntities()
	out := make([]EntitySnapshot, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Snapshot())
	}
	return out
}

// Summary is a point-in-time summary of the registry's state.
type Summary struct {
	Entities       int            `json:"entities"`
	Observed       int            `json:"observed"`
	Records        int            `json:"records"`
	Markers        int            `json:"markers"`
	LiveMarkers    int            `json:"liveMarkers"`
	MarkersBySide  map[string]int `json:"markersBySide"`
	PendingWakeups int            `json:"pendingWakeups"`
	Observers      int            `json:"observers"`
	Spots          int64          `json:"spots"`
	Rejected       int64          `json:"rejected"`
}

// Summary collects the current registry state.
func (r *Registry) Summary() Summary {
	now := r.clock.Now()
	s := Summary{
		MarkersBySide:  make(map[string]int),
		PendingWakeups: r.queue.Len(),
		Observers:      r.subs.Observers(),
		Spots:          r.spots.Load(),
		Rejected:       r.rejected.Load(),
	}
	for _, snap := range r.Snapshots() {
		s.Entities++
		if len(snap.Records) > 0 {
			s.Observed++
		}
		s.Records += len(snap.Records)
		s.Markers += len(snap.Markers)
		for _, m := range snap.Markers {
			if now.Before(m.ExpiresAt) {
				s.LiveMarkers++
				s.MarkersBySide[m.Side.String()]++
			}
		}
	}
	return s
}
