// pkg/core/events.go
package core

import "time"

// Session describes the mission the engine is currently serving.
type Session struct {
	ID           uint
	MissionName  string
	WorldName    string
	StartTime    time.Time
	SideFriendly SideFriendly
}

// SpotEvent is emitted once per successful spot.
type SpotEvent struct {
	Time         time.Time     `json:"time"`
	TargetID     ObjectID      `json:"targetId"`
	TargetKind   Kind          `json:"targetKind"`
	TargetSide   Side          `json:"targetSide"`
	ObserverID   ObjectID      `json:"observerId"`
	ObserverSide Side          `json:"observerSide"`
	Trackable    bool          `json:"trackable"`
	Duration     time.Duration `json:"duration"`
	Position     Position3D    `json:"position"`
}

// MarkerAction is what happened to a marker during reconciliation.
type MarkerAction string

const (
	MarkerCreated   MarkerAction = "created"
	MarkerRefreshed MarkerAction = "refreshed"
	MarkerMoved     MarkerAction = "moved"
	MarkerRemoved   MarkerAction = "removed"
)

// MarkerEvent records one marker lifecycle step.
type MarkerEvent struct {
	Time     time.Time     `json:"time"`
	Handle   string        `json:"handle"`
	TargetID ObjectID      `json:"targetId"`
	Side     Side          `json:"side"`
	Action   MarkerAction  `json:"action"`
	Follow   bool          `json:"follow"`
	Effect   string        `json:"effect"`
	Position Position3D    `json:"position"`
	Lifetime time.Duration `json:"lifetime"`
}
