// Package postgresstorage implements the storage.Backend interface on PostgreSQL
// by embedding the GORM backend.
package postgresstorage

import (
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/OCAP2/spotting/internal/config"
	"github.com/OCAP2/spotting/internal/database"
	gormstorage "github.com/OCAP2/spotting/internal/storage/gorm"
)

// Dependencies holds the shared collaborators.
type Dependencies struct {
	Logger           *slog.Logger
	DBLogger         zerolog.Logger
	Clock            clockwork.Clock
	ExtensionVersion string
}

// Backend journals to Postgres.
type Backend struct {
	*gormstorage.Backend
	manager *database.Manager
	cfg     config.PostgresConfig
	deps    Dependencies
}

// New creates a new Postgres storage backend. The connection is opened in Init.
func New(cfg config.PostgresConfig, deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			Logger: deps.Logger,
			Clock:  deps.Clock,
		}),
		manager: database.NewManager(deps.DBLogger),
		cfg:     cfg,
		deps:    deps,
	}
}

// Init connects, migrates the schema and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if err := b.manager.OpenPostgres(b.cfg); err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := b.manager.Migrate(b.deps.ExtensionVersion); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.Backend.SetDB(b.manager.DB)
	return b.Backend.Init()
}

// Close stops the writer, flushes and closes the connection pool.
func (b *Backend) Close() error {
	err := b.Backend.Close()
	if closeErr := b.manager.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
