// Package sqlitestorage implements the storage.Backend interface using an in-memory
// SQLite database with periodic disk dumps via VACUUM INTO.
// It wraps the GORM backend via composition; the only SQLite-specific concerns are
// creating the in-memory DB and the periodic disk dump.
package sqlitestorage

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/OCAP2/spotting/internal/database"
	gormstorage "github.com/OCAP2/spotting/internal/storage/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	DumpInterval time.Duration
	DumpPath     string // Path for periodic VACUUM INTO dumps
	DatabasePath string // live database; empty means in-memory
}

// Dependencies holds the shared collaborators.
type Dependencies struct {
	Logger           *slog.Logger
	DBLogger         zerolog.Logger
	Clock            clockwork.Clock
	ExtensionVersion string
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	manager  *database.Manager
	cfg      Config
	deps     Dependencies
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a new SQLite storage backend. The database is opened in Init.
func New(cfg Config, deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			Logger: deps.Logger,
			Clock:  deps.Clock,
		}),
		manager:  database.NewManager(deps.DBLogger),
		cfg:      cfg,
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// Init opens and migrates the database, then starts the writer and dump goroutines.
func (b *Backend) Init() error {
	if err := b.manager.OpenSqlite(b.cfg.DatabasePath); err != nil {
		return fmt.Errorf("failed to create SQLite DB: %w", err)
	}
	if err := b.manager.Migrate(b.deps.ExtensionVersion); err != nil {
		return err
	}
	b.Backend.SetDB(b.manager.DB)

	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.wg.Add(1)
		go b.dumpLoop()
	}

	return nil
}

// Close stops the dump goroutine, writes a final dump and closes the database.
func (b *Backend) Close() error {
	b.stopOnce.Do(func() { close(b.stopChan) })
	b.wg.Wait()

	err := b.Backend.Close()
	if b.manager.DB != nil && b.cfg.DumpPath != "" {
		if dumpErr := b.Dump(); dumpErr != nil && err == nil {
			err = dumpErr
		}
	}
	if closeErr := b.manager.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// EndSession closes the session and dumps the journal to disk.
func (b *Backend) EndSession() error {
	if err := b.Backend.EndSession(); err != nil {
		return err
	}
	if b.cfg.DumpPath == "" {
		return nil
	}
	return b.Dump()
}

// Dump flushes pending rows and writes a point-in-time copy to DumpPath.
func (b *Backend) Dump() error {
	if err := b.Backend.Flush(); err != nil {
		return err
	}
	start := b.deps.Clock.Now()
	if err := database.DumpMemoryDBToDisk(b.manager.DB, b.cfg.DumpPath); err != nil {
		return err
	}
	b.deps.Logger.Debug("Dumped journal to disk", "path", b.cfg.DumpPath, "duration", b.deps.Clock.Since(start))
	return nil
}

// GetExportedFilePath returns the dump path.
func (b *Backend) GetExportedFilePath() string {
	return b.cfg.DumpPath
}

// dumpLoop periodically dumps the in-memory SQLite database to disk via VACUUM INTO.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	defer b.wg.Done()

	ticker := b.deps.Clock.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.Chan():
			if err := b.Dump(); err != nil {
				b.deps.Logger.Error("Error dumping to disk", "error", err)
			}
		}
	}
}
