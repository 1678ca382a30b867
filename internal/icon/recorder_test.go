package icon

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/spotting/pkg/core"
)

type recordedMarkers struct {
	mu     sync.Mutex
	events []core.MarkerEvent
	err    error
}

func (r *recordedMarkers) RecordMarker(e *core.MarkerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *e)
	return r.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecorderJournalsLifecycle(t *testing.T) {
	clock := clockwork.NewFakeClock()
	mem := NewMemory(clock)
	rec := &recordedMarkers{}
	r := NewRecorder(mem, rec, clock, discardLogger())

	h := r.Create(Spec{
		TargetID: 12,
		Side:     core.SideWest,
		Follow:   true,
		Effect:   "laser",
		Lifetime: 5 * time.Second,
	})
	_, ok := mem.Get(h)
	require.True(t, ok, "create forwarded to next sink")

	r.KeepAlive(h, 8*time.Second)
	r.SetSnapshotPosition(h, core.Position3D{X: 10, Y: 20})
	r.Remove(h)

	require.Len(t, rec.events, 4)
	actions := []core.MarkerAction{rec.events[0].Action, rec.events[1].Action, rec.events[2].Action, rec.events[3].Action}
	assert.Equal(t, []core.MarkerAction{core.MarkerCreated, core.MarkerRefreshed, core.MarkerMoved, core.MarkerRemoved}, actions)

	assert.Equal(t, string(h), rec.events[0].Handle)
	assert.Equal(t, core.ObjectID(12), rec.events[0].TargetID)
	assert.True(t, rec.events[0].Follow)
	assert.Equal(t, 5*time.Second, rec.events[0].Lifetime)
	assert.Equal(t, 8*time.Second, rec.events[1].Lifetime)
	assert.Equal(t, core.Position3D{X: 10, Y: 20}, rec.events[2].Position)
	assert.Equal(t, time.Duration(0), rec.events[3].Lifetime)
	assert.Equal(t, 0, mem.Count())
}

func TestRecorderIgnoresUnknownHandles(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := &recordedMarkers{}
	r := NewRecorder(NewMemory(clock), rec, clock, discardLogger())

	r.KeepAlive("nope", time.Second)
	r.SetSnapshotPosition("nope", core.Position3D{})
	r.Remove("nope")

	assert.Empty(t, rec.events)
}

func TestRecorderErrorDoesNotBlockSink(t *testing.T) {
	clock := clockwork.NewFakeClock()
	mem := NewMemory(clock)
	rec := &recordedMarkers{err: errors.New("disk full")}
	r := NewRecorder(mem, rec, clock, discardLogger())

	h := r.Create(Spec{TargetID: 1, Lifetime: time.Second})
	_, ok := mem.Get(h)
	assert.True(t, ok)
	assert.Len(t, rec.events, 1)
}
