// Package mission holds the session the engine is currently serving.
package mission

import (
	"log/slog"
	"sync"

	"github.com/OCAP2/spotting/pkg/core"
)

// Context holds the current session and its side relations
type Context struct {
	mu      sync.RWMutex
	session *core.Session
}

// NewContext creates a new Context with default values
func NewContext() *Context {
	return &Context{
		session: defaultSession(),
	}
}

func defaultSession() *core.Session {
	return &core.Session{
		MissionName: "No mission loaded",
		WorldName:   "No world loaded",
		// vanilla Arma: independents side with west
		SideFriendly: core.SideFriendly{WestIndependent: true},
	}
}

// GetSession returns a copy of the current session
func (mc *Context) GetSession() core.Session {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return *mc.session
}

// SetSession replaces the current session
func (mc *Context) SetSession(s core.Session) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.session = &s
}

// Clear resets to the no-mission session
func (mc *Context) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.session = defaultSession()
}

// IsOpponent answers side relations for the current session.
func (mc *Context) IsOpponent(a, b core.Side) bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.session.SideFriendly.IsOpponent(a, b)
}

// LogAttrs returns the attributes stamped on every log record, or nil while
// no session is open.
func (mc *Context) LogAttrs() []slog.Attr {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	if mc.session.ID == 0 {
		return nil
	}
	return []slog.Attr{
		slog.Uint64("id", uint64(mc.session.ID)),
		slog.String("mission", mc.session.MissionName),
		slog.String("world", mc.session.WorldName),
	}
}
