package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&EngineInfo{},
	&Session{},
	&Spot{},
	&MarkerEvent{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// EngineInfo identifies the engine build that owns the schema
type EngineInfo struct {
	gorm.Model
	ExtensionVersion string `json:"extensionVersion" gorm:"size:64"`
	SchemaVersion    uint   `json:"schemaVersion"`
}

func (*EngineInfo) TableName() string {
	return "engine_infos"
}

////////////////////////
// JOURNAL MODELS
////////////////////////

// Session is one mission run
//
// SQF Command: :SESSION:START:
// Args: [missionName, worldName, sideFriendly]
type Session struct {
	gorm.Model
	MissionName  string         `json:"missionName" gorm:"size:200"`
	WorldName    string         `json:"worldName" gorm:"size:127"`
	StartTime    time.Time      `json:"startTime" gorm:"index:idx_session_start"`
	EndTime      *time.Time     `json:"endTime"`
	SideFriendly datatypes.JSON `json:"sideFriendly"` // {"eastWest":..,"eastIndependent":..,"westIndependent":..}
	Spots        []Spot
	MarkerEvents []MarkerEvent
}

func (*Session) TableName() string {
	return "sessions"
}

// Spot is one accepted detection
//
// SQF Command: :SPOT:
// Args: [observerId, observerSide, trackable, targetId, hitKind, targetSide, position, duration?]
type Spot struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time      time.Time `json:"time" gorm:"index:idx_spot_time"`
	SessionID uint      `json:"sessionId" gorm:"index:idx_spot_session_id"`
	Session   Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`

	TargetID     uint16     `json:"targetId" gorm:"index:idx_spot_target_id"`
	TargetKind   string     `json:"targetKind" gorm:"size:32"`
	TargetSide   string     `json:"targetSide" gorm:"size:16"`
	ObserverID   uint16     `json:"observerId" gorm:"index:idx_spot_observer_id"`
	ObserverSide string     `json:"observerSide" gorm:"size:16"`
	Trackable    bool       `json:"trackable"`
	DurationMs   int64      `json:"durationMs"`
	Position     geom.Point `json:"position"` // target position ASL at the time of the spot
}

func (*Spot) TableName() string {
	return "spots"
}

// MarkerEvent is one world-marker lifecycle step
type MarkerEvent struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time      time.Time `json:"time" gorm:"index:idx_marker_event_time"`
	SessionID uint      `json:"sessionId" gorm:"index:idx_marker_event_session_id"`
	Session   Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`

	Handle     string     `json:"handle" gorm:"size:64;index:idx_marker_event_handle"`
	TargetID   uint16     `json:"targetId" gorm:"index:idx_marker_event_target_id"`
	Side       string     `json:"side" gorm:"size:16"`
	Action     string     `json:"action" gorm:"size:16"` // created, refreshed, moved, removed
	Follow     bool       `json:"follow"`
	Effect     string     `json:"effect" gorm:"size:64"`
	Position   geom.Point `json:"position"`
	LifetimeMs int64      `json:"lifetimeMs"`
}

func (*MarkerEvent) TableName() string {
	return "marker_events"
}
