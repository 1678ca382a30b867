package spotting

import (
	"time"

	"github.com/OCAP2/spotting/pkg/core"
)

// Spotter is anything that can observe a target: a player with a designator
// or an automated sensor.
type Spotter interface {
	SpotterID() core.ObjectID
	Team() core.Side
	// IsTrackable reports whether markers placed by this spotter follow the
	// target's live position instead of a fixed point.
	IsTrackable() bool
}

// Observer is the plain Spotter built from a detection command.
type Observer struct {
	ID        core.ObjectID
	Side      core.Side
	Trackable bool
}

func (o Observer) SpotterID() core.ObjectID { return o.ID }
func (o Observer) Team() core.Side          { return o.Side }
func (o Observer) IsTrackable() bool        { return o.Trackable }

// NewPlayer returns a designator-wielding player. Players lase the target
// continuously, so their markers follow it.
func NewPlayer(id core.ObjectID, side core.Side) Observer {
	return Observer{ID: id, Side: side, Trackable: true}
}

// NewSensor returns an automated sensor that only reports fixed positions.
func NewSensor(id core.ObjectID, side core.Side) Observer {
	return Observer{ID: id, Side: side}
}

// Target identifies one spottable thing.
type Target struct {
	ID   core.ObjectID
	Kind core.Kind
	Side core.Side
}

// ObservationRecord is one observer's active observation of a target.
type ObservationRecord struct {
	Observer  core.ObjectID `json:"observer"`
	Side      core.Side     `json:"side"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Trackable bool          `json:"trackable"`
}
