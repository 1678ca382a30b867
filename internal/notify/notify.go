// Package notify delivers successful spots to chat, the journal, NATS and logs.
package notify

import (
	"fmt"
	"log/slog"

	"github.com/OCAP2/spotting/pkg/core"
)

// Notifier receives successful spots.
type Notifier interface {
	Notify(e core.SpotEvent)
}

type multi []Notifier

// Multi fans a spot out to every non-nil notifier in order.
func Multi(notifiers ...Notifier) Notifier {
	out := make(multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m multi) Notify(e core.SpotEvent) {
	for _, n := range m {
		n.Notify(e)
	}
}

// Log writes each spot to a slog logger at debug level.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a Log notifier.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(e core.SpotEvent) {
	l.logger.Debug("Target spotted",
		"target", e.TargetID,
		"kind", e.TargetKind.String(),
		"targetSide", e.TargetSide.String(),
		"observer", e.ObserverID,
		"observerSide", e.ObserverSide.String(),
		"trackable", e.Trackable,
		"duration", e.Duration,
	)
}

// SpotRecorder persists spot events.
type SpotRecorder interface {
	RecordSpot(e *core.SpotEvent) error
}

// Journal records each spot to a storage backend.
type Journal struct {
	rec    SpotRecorder
	logger *slog.Logger
}

// NewJournal creates a Journal notifier.
func NewJournal(rec SpotRecorder, logger *slog.Logger) *Journal {
	return &Journal{rec: rec, logger: logger}
}

func (j *Journal) Notify(e core.SpotEvent) {
	if err := j.rec.RecordSpot(&e); err != nil {
		j.logger.Warn("Failed to record spot", "target", e.TargetID, "error", err)
	}
}

// CallbackFunc delivers a function/data pair back into the game.
type CallbackFunc func(function, data string) error

// CallbackSpotted is the callback function name for chat and toast display.
const CallbackSpotted = "spotting:spotted"

// Callback sends each spot back into the game as an SQF array for the chat
// and toast pipeline.
type Callback struct {
	fn     CallbackFunc
	logger *slog.Logger
}

// NewCallback creates a Callback notifier.
func NewCallback(fn CallbackFunc, logger *slog.Logger) *Callback {
	return &Callback{fn: fn, logger: logger}
}

func (c *Callback) Notify(e core.SpotEvent) {
	data := fmt.Sprintf(`["spotted",%d,"%s","%s",%d,"%s",%t,%s]`,
		e.TargetID,
		e.TargetKind,
		e.TargetSide,
		e.ObserverID,
		e.ObserverSide,
		e.Trackable,
		e.Position.SQF(),
	)
	if err := c.fn(CallbackSpotted, data); err != nil {
		c.logger.Warn("Spot callback failed", "target", e.TargetID, "error", err)
	}
}
