package icon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/OCAP2/spotting/pkg/core"
)

// CallbackFunc delivers a function/data pair back into the game.
type CallbackFunc func(function, data string) error

// Callback functions understood by the mission-side icon renderer.
const (
	CallbackCreate    = "icon:create"
	CallbackKeepAlive = "icon:keepalive"
	CallbackSnapshot  = "icon:snapshot"
	CallbackRemove    = "icon:remove"
)

// Callback renders icons through the extension callback as SQF arrays.
type Callback struct {
	fn     CallbackFunc
	logger *slog.Logger
}

// NewCallback creates a Callback sink.
func NewCallback(fn CallbackFunc, logger *slog.Logger) *Callback {
	return &Callback{fn: fn, logger: logger}
}

func (c *Callback) Create(spec Spec) Handle {
	assignHandle(&spec)
	c.send(CallbackCreate, fmt.Sprintf(`["%s",%d,"%s",%t,%s,%s,"%s",%g,%g]`,
		spec.Handle,
		spec.TargetID,
		spec.Side,
		spec.Follow,
		spec.Position.SQF(),
		spec.Offset.SQF(),
		spec.Effect,
		spec.Lifetime.Seconds(),
		spec.TickRate.Seconds(),
	))
	return spec.Handle
}

func (c *Callback) KeepAlive(h Handle, lifetime time.Duration) {
	c.send(CallbackKeepAlive, fmt.Sprintf(`["%s",%g]`, h, lifetime.Seconds()))
}

func (c *Callback) SetSnapshotPosition(h Handle, pos core.Position3D) {
	c.send(CallbackSnapshot, fmt.Sprintf(`["%s",%s]`, h, pos.SQF()))
}

func (c *Callback) Remove(h Handle) {
	c.send(CallbackRemove, fmt.Sprintf(`["%s"]`, h))
}

func (c *Callback) send(function, data string) {
	if err := c.fn(function, data); err != nil {
		c.logger.Warn("Icon callback failed", "function", function, "error", err)
	}
}
