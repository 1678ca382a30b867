package icon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/OCAP2/spotting/pkg/core"
)

// MarkerRecorder persists marker lifecycle events.
type MarkerRecorder interface {
	RecordMarker(e *core.MarkerEvent) error
}

// Recorder wraps a Sink and journals every call as a core.MarkerEvent.
type Recorder struct {
	next   Sink
	rec    MarkerRecorder
	clock  clockwork.Clock
	logger *slog.Logger

	mu    sync.Mutex
	specs map[Handle]Spec
}

// NewRecorder creates a Recorder in front of next.
func NewRecorder(next Sink, rec MarkerRecorder, clock clockwork.Clock, logger *slog.Logger) *Recorder {
	return &Recorder{
		next:   next,
		rec:    rec,
		clock:  clock,
		logger: logger,
		specs:  make(map[Handle]Spec),
	}
}

func (r *Recorder) Create(spec Spec) Handle {
	assignHandle(&spec)
	r.next.Create(spec)

	r.mu.Lock()
	r.specs[spec.Handle] = spec
	r.mu.Unlock()

	r.record(spec, core.MarkerCreated)
	return spec.Handle
}

func (r *Recorder) KeepAlive(h Handle, lifetime time.Duration) {
	r.next.KeepAlive(h, lifetime)

	r.mu.Lock()
	spec, ok := r.specs[h]
	if ok {
		spec.Lifetime = lifetime
		r.specs[h] = spec
	}
	r.mu.Unlock()

	if ok {
		r.record(spec, core.MarkerRefreshed)
	}
}

func (r *Recorder) SetSnapshotPosition(h Handle, pos core.Position3D) {
	r.next.SetSnapshotPosition(h, pos)

	r.mu.Lock()
	spec, ok := r.specs[h]
	if ok {
		spec.Position = pos
		r.specs[h] = spec
	}
	r.mu.Unlock()

	if ok {
		r.record(spec, core.MarkerMoved)
	}
}

func (r *Recorder) Remove(h Handle) {
	r.next.Remove(h)

	r.mu.Lock()
	spec, ok := r.specs[h]
	delete(r.specs, h)
	r.mu.Unlock()

	if ok {
		spec.Lifetime = 0
		r.record(spec, core.MarkerRemoved)
	}
}

func (r *Recorder) record(spec Spec, action core.MarkerAction) {
	e := &core.MarkerEvent{
		Time:     r.clock.Now(),
		Handle:   string(spec.Handle),
		TargetID: spec.TargetID,
		Side:     spec.Side,
		Action:   action,
		Follow:   spec.Follow,
		Effect:   spec.Effect,
		Position: spec.Position,
		Lifetime: spec.Lifetime,
	}
	if err := r.rec.RecordMarker(e); err != nil {
		r.logger.Warn("Failed to record marker event", "handle", spec.Handle, "action", action, "error", err)
	}
}
