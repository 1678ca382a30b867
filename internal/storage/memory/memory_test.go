package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/OCAP2/spotting/internal/config"
	"github.com/OCAP2/spotting/pkg/core"
)

var sessionStart = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func newTestBackend(t *testing.T, compress bool) (*Backend, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(sessionStart)
	b := New(config.MemoryConfig{OutputDir: t.TempDir(), CompressOutput: compress}, clock)
	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return b, clock
}

func startSession(t *testing.T, b *Backend) core.Session {
	t.Helper()
	s := core.Session{MissionName: "Op Thunder: Dawn", WorldName: "altis"}
	if err := b.StartSession(&s); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: "/tmp/test", CompressOutput: true}, nil)

	if b == nil {
		t.Fatal("New returned nil")
	}
	if b.cfg.OutputDir != "/tmp/test" {
		t.Errorf("expected OutputDir=/tmp/test, got %s", b.cfg.OutputDir)
	}
	if b.clock == nil {
		t.Error("clock not defaulted")
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestStartSession_AssignsIDAndStart(t *testing.T) {
	b, _ := newTestBackend(t, false)

	s1 := startSession(t, b)
	if s1.ID != 1 {
		t.Errorf("expected ID=1, got %d", s1.ID)
	}
	if !s1.StartTime.Equal(sessionStart) {
		t.Errorf("expected start %v, got %v", sessionStart, s1.StartTime)
	}

	b.RecordSpot(&core.SpotEvent{TargetID: 1})
	s2 := startSession(t, b)
	if s2.ID != 2 {
		t.Errorf("expected ID=2, got %d", s2.ID)
	}
	if len(b.Spots()) != 0 {
		t.Error("new session should reset the journal")
	}

	active, ok := b.Session()
	if !ok || active.ID != 2 {
		t.Errorf("expected active session 2, got %+v (%v)", active, ok)
	}
}

func TestRecord_Concurrent(t *testing.T) {
	b, _ := newTestBackend(t, false)
	startSession(t, b)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			b.RecordSpot(&core.SpotEvent{TargetID: core.ObjectID(i)})
		}(i)
		go func() {
			defer wg.Done()
			b.RecordMarker(&core.MarkerEvent{Action: core.MarkerCreated})
		}()
	}
	wg.Wait()

	if got := len(b.Spots()); got != 50 {
		t.Errorf("expected 50 spots, got %d", got)
	}
	if got := len(b.Markers()); got != 50 {
		t.Errorf("expected 50 markers, got %d", got)
	}
}

func TestEndSession_NoSession(t *testing.T) {
	b, _ := newTestBackend(t, false)
	if err := b.EndSession(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if b.GetExportedFilePath() != "" {
		t.Error("nothing should be exported")
	}
}

func recordSample(b *Backend, clock *clockwork.FakeClock) {
	clock.Advance(5 * time.Second)
	b.RecordSpot(&core.SpotEvent{
		Time:         clock.Now(),
		TargetID:     12,
		TargetKind:   core.KindArmor,
		TargetSide:   core.SideEast,
		ObserverID:   3,
		ObserverSide: core.SideWest,
		Trackable:    true,
		Duration:     30 * time.Second,
		Position:     core.Position3D{X: 100, Y: 200, Z: 5},
	})
	b.RecordMarker(&core.MarkerEvent{
		Time:     clock.Now(),
		Handle:   "h1",
		TargetID: 12,
		Side:     core.SideWest,
		Action:   core.MarkerCreated,
		Follow:   true,
		Effect:   "spot_armor",
		Lifetime: 30 * time.Second,
	})
	clock.Advance(30 * time.Second)
	b.RecordMarker(&core.MarkerEvent{
		Time:     clock.Now(),
		Handle:   "h1",
		TargetID: 12,
		Side:     core.SideWest,
		Action:   core.MarkerRemoved,
	})
	b.RecordSpot(&core.SpotEvent{
		Time:         clock.Now(),
		TargetID:     13,
		TargetKind:   core.KindInfantry,
		ObserverID:   4,
		ObserverSide: core.SideIndependent,
		Duration:     12 * time.Second,
	})
}

func TestEndSession_ExportsJSON(t *testing.T) {
	b, clock := newTestBackend(t, false)
	startSession(t, b)
	recordSample(b, clock)

	if err := b.EndSession(); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}

	path := b.GetExportedFilePath()
	if filepath.Base(path) != "Op_Thunder__Dawn_20260301_180000.json" {
		t.Errorf("unexpected export name %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	var export SessionExport
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("failed to parse export: %v", err)
	}

	if export.MissionName != "Op Thunder: Dawn" || export.WorldName != "altis" {
		t.Errorf("unexpected header %+v", export)
	}
	if export.Duration != 35 {
		t.Errorf("expected duration 35, got %v", export.Duration)
	}
	sum := export.Summary
	if sum.Spots != 2 || sum.MarkerEvents != 2 || sum.Targets != 2 {
		t.Errorf("unexpected counts %+v", sum)
	}
	if sum.MarkersCreated != 1 || sum.MarkersRemoved != 1 || sum.TrackableSpots != 1 || sum.SnapshotSpots != 1 {
		t.Errorf("unexpected breakdown %+v", sum)
	}
	if sum.SpotsBySide["WEST"] != 1 || sum.SpotsBySide["GUER"] != 1 {
		t.Errorf("unexpected per-side spots %v", sum.SpotsBySide)
	}

	spot := export.Spots[0]
	if spot.Offset != 5 || spot.TargetKind != "armor" || spot.Duration != 30 || spot.Position != [3]float64{100, 200, 5} {
		t.Errorf("unexpected spot %+v", spot)
	}
	if export.Markers[1].Action != "removed" || export.Markers[1].Offset != 35 {
		t.Errorf("unexpected marker %+v", export.Markers[1])
	}

	if _, ok := b.Session(); ok {
		t.Error("session should be closed after export")
	}
}

func TestEndSession_ExportsGzip(t *testing.T) {
	b, clock := newTestBackend(t, true)
	startSession(t, b)
	recordSample(b, clock)

	if err := b.EndSession(); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}

	path := b.GetExportedFilePath()
	if !strings.HasSuffix(path, ".json.gz") {
		t.Fatalf("expected gzip export, got %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open export: %v", err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("failed to open gzip: %v", err)
	}
	var export SessionExport
	if err := json.NewDecoder(gz).Decode(&export); err != nil {
		t.Fatalf("failed to decode export: %v", err)
	}
	if len(export.Spots) != 2 {
		t.Errorf("expected 2 spots, got %d", len(export.Spots))
	}
}

func TestEndSession_BadOutputDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	b := New(config.MemoryConfig{OutputDir: filepath.Join(blocker, "sub")}, clockwork.NewFakeClock())
	startSession(t, b)

	if err := b.EndSession(); err == nil {
		t.Error("expected error for unusable output dir")
	}
}
