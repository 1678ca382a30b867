package storage

import (
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/OCAP2/spotting/internal/config"
	"github.com/OCAP2/spotting/internal/storage/memory"
	postgresstorage "github.com/OCAP2/spotting/internal/storage/postgres"
	sqlitestorage "github.com/OCAP2/spotting/internal/storage/sqlite"
)

// Dependencies are shared by every backend.
type Dependencies struct {
	Logger           *slog.Logger
	DBLogger         zerolog.Logger
	Clock            clockwork.Clock
	ExtensionVersion string
}

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, deps Dependencies) (Backend, error) {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	switch cfg.Type {
	case "postgres":
		return postgresstorage.New(cfg.Postgres, postgresstorage.Dependencies{
			Logger:           deps.Logger,
			DBLogger:         deps.DBLogger,
			Clock:            deps.Clock,
			ExtensionVersion: deps.ExtensionVersion,
		}), nil
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{
			DumpPath:     cfg.SQLite.Path,
			DumpInterval: cfg.SQLite.DumpInterval,
		}, sqlitestorage.Dependencies{
			Logger:           deps.Logger,
			DBLogger:         deps.DBLogger,
			Clock:            deps.Clock,
			ExtensionVersion: deps.ExtensionVersion,
		}), nil
	case "memory":
		return memory.New(cfg.Memory, deps.Clock), nil
	case "none", "":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
