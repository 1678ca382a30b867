package parser

import (
	"github.com/OCAP2/spotting/internal/spotting"
	"github.com/OCAP2/spotting/pkg/core"
)

// SessionStart opens a new mission session.
type SessionStart struct {
	MissionName  string
	WorldName    string
	SideFriendly core.SideFriendly
}

// TargetPosition is a position report for a registered target.
type TargetPosition struct {
	TargetID core.ObjectID
	Position core.Position3D
}

// SpotRequest is a designator or sensor detection.
type SpotRequest struct {
	Observer spotting.Observer
	Hit      spotting.Hit
}

// Unspot withdraws one observer from one target.
type Unspot struct {
	ObserverID core.ObjectID
	TargetID   core.ObjectID
}

// LaserQuery asks whether a target may be locked by a side.
type LaserQuery struct {
	TargetID core.ObjectID
	Side     core.Side
}
