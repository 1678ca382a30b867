package sqlitestorage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/spotting/internal/database"
	"github.com/OCAP2/spotting/internal/model"
	"github.com/OCAP2/spotting/pkg/core"
)

var start = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func newTestBackend(t *testing.T, interval time.Duration) (*Backend, *clockwork.FakeClock, string) {
	t.Helper()
	dir := t.TempDir()
	clock := clockwork.NewFakeClockAt(start)
	dump := filepath.Join(dir, "dump.db")
	b := New(Config{
		DumpInterval: interval,
		DumpPath:     dump,
		DatabasePath: filepath.Join(dir, "live.db"),
	}, Dependencies{Clock: clock, DBLogger: zerolog.Nop(), ExtensionVersion: "test"})
	require.NoError(t, b.Init())
	return b, clock, dump
}

func countSpots(t *testing.T, path string) int64 {
	t.Helper()
	m := database.NewManager(zerolog.Nop())
	require.NoError(t, m.OpenSqlite(path))
	defer m.Close()
	var n int64
	require.NoError(t, m.DB.Model(&model.Spot{}).Count(&n).Error)
	return n
}

func TestEndSession_DumpsToDisk(t *testing.T) {
	b, _, dump := newTestBackend(t, 0)
	defer b.Close()

	s := core.Session{MissionName: "dumped"}
	require.NoError(t, b.StartSession(&s))
	require.NoError(t, b.RecordSpot(&core.SpotEvent{Time: start, TargetID: 4, TargetKind: core.KindInfantry}))
	require.NoError(t, b.EndSession())

	assert.Equal(t, dump, b.GetExportedFilePath())
	assert.Equal(t, int64(1), countSpots(t, dump))
}

func TestDumpLoop_DumpsPeriodically(t *testing.T) {
	b, clock, dump := newTestBackend(t, time.Minute)
	defer b.Close()

	s := core.Session{MissionName: "periodic"}
	require.NoError(t, b.StartSession(&s))
	require.NoError(t, b.RecordSpot(&core.SpotEvent{Time: start, TargetID: 4}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	// gorm writer ticker + dump ticker
	require.NoError(t, clock.BlockUntilContext(ctx, 2))
	clock.Advance(time.Minute)

	assert.Eventually(t, func() bool {
		return fileHasSpots(dump)
	}, 2*time.Second, 20*time.Millisecond)
}

func fileHasSpots(path string) bool {
	m := database.NewManager(zerolog.Nop())
	if err := m.OpenSqlite(path); err != nil {
		return false
	}
	defer m.Close()
	var n int64
	if err := m.DB.Model(&model.Spot{}).Count(&n).Error; err != nil {
		return false
	}
	return n == 1
}

func TestClose_WritesFinalDump(t *testing.T) {
	b, _, dump := newTestBackend(t, 0)

	s := core.Session{MissionName: "closing"}
	require.NoError(t, b.StartSession(&s))
	require.NoError(t, b.RecordSpot(&core.SpotEvent{Time: start, TargetID: 9}))
	require.NoError(t, b.Close())

	assert.Equal(t, int64(1), countSpots(t, dump))
}

func TestInit_BadPath(t *testing.T) {
	b := New(Config{DatabasePath: filepath.Join(t.TempDir(), "missing", "dir", "live.db")}, Dependencies{DBLogger: zerolog.Nop()})
	assert.Error(t, b.Init())
}
