// Package worker binds the spotting commands received from the game to the
// registry, the mission context and the journal.
package worker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/OCAP2/spotting/internal/mission"
	"github.com/OCAP2/spotting/internal/parser"
	"github.com/OCAP2/spotting/internal/spotting"
	"github.com/OCAP2/spotting/internal/storage"
	"github.com/OCAP2/spotting/pkg/core"
)

// ErrNoSession is returned by :SESSION:END: when no session is open.
var ErrNoSession = errors.New("no session in progress")

// SessionHook is notified when a session opens or closes, for sinks that frame
// their output per mission.
type SessionHook interface {
	StartSession(s *core.Session) error
	EndSession() error
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Registry *spotting.Registry
	Parser   *parser.Parser
	Mission  *mission.Context
	Backend  storage.Backend
	Hooks    []SessionHook
	Clock    clockwork.Clock
	Logger   *slog.Logger
}

// Manager handles the spotting commands
type Manager struct {
	deps   Dependencies
	active bool
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies) *Manager {
	if deps.Backend == nil {
		deps.Backend = storage.Nop{}
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Manager{deps: deps}
}

// DBWriteDurationProvider is an optional interface that backends can implement
// to expose their last DB write duration for monitoring.
type DBWriteDurationProvider interface {
	GetLastDBWriteDuration() time.Duration
}

// GetLastDBWriteDuration returns the duration of the last DB write cycle.
// Returns 0 if the backend doesn't support this metric.
func (m *Manager) GetLastDBWriteDuration() time.Duration {
	if p, ok := m.deps.Backend.(DBWriteDurationProvider); ok {
		return p.GetLastDBWriteDuration()
	}
	return 0
}

// SessionActive reports whether a session is open.
func (m *Manager) SessionActive() bool {
	return m.active
}
