package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/spotting/internal/config"
	"github.com/OCAP2/spotting/internal/model"
)

func openTestDB(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(zerolog.Nop())
	require.NoError(t, m.OpenSqlite(filepath.Join(t.TempDir(), "journal.db")))
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.PostgresConfig{
		Host:     "db",
		Port:     "5432",
		Username: "spot",
		Password: "secret",
		Database: "spotting",
	})
	assert.Equal(t, "host=db port=5432 user=spot password=secret dbname=spotting sslmode=disable", dsn)
}

func TestMigrate_CreatesTablesAndInfo(t *testing.T) {
	m := openTestDB(t)
	require.True(t, m.IsValid)

	require.NoError(t, m.Migrate("1.2.3"))
	for _, tbl := range model.DatabaseModels {
		assert.True(t, m.DB.Migrator().HasTable(tbl))
	}

	var info model.EngineInfo
	require.NoError(t, m.DB.First(&info).Error)
	assert.Equal(t, "1.2.3", info.ExtensionVersion)
	assert.Equal(t, uint(SchemaVersion), info.SchemaVersion)

	// a second migration does not duplicate the info row
	require.NoError(t, m.Migrate("1.2.4"))
	var count int64
	m.DB.Model(&model.EngineInfo{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMigrate_NotOpened(t *testing.T) {
	m := NewManager(zerolog.Nop())
	assert.Error(t, m.Migrate("x"))
	assert.NoError(t, m.Close())
}

func TestDumpMemoryDBToDisk(t *testing.T) {
	m := openTestDB(t)
	require.NoError(t, m.Migrate("1.0.0"))
	require.NoError(t, m.DB.Create(&model.Session{MissionName: "dump_me"}).Error)

	out := filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0o644))
	require.NoError(t, DumpMemoryDBToDisk(m.DB, out))

	dumped := NewManager(zerolog.Nop())
	require.NoError(t, dumped.OpenSqlite(out))
	defer dumped.Close()

	var s model.Session
	require.NoError(t, dumped.DB.First(&s).Error)
	assert.Equal(t, "dump_me", s.MissionName)

	assert.Error(t, DumpMemoryDBToDisk(m.DB, ""))
}

func TestDumpFileNameAndBackups(t *testing.T) {
	dir := t.TempDir()
	name := DumpFileName(dir, time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC))
	assert.Equal(t, filepath.Join(dir, "spotting_20260212_213836.db"), name)

	require.NoError(t, os.WriteFile(name, nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))

	paths, err := GetBackupDBPaths(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{name}, paths)

	_, err = GetBackupDBPaths(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
