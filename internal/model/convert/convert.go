// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"

	"github.com/OCAP2/spotting/internal/geo"
	"github.com/OCAP2/spotting/internal/model"
	"github.com/OCAP2/spotting/pkg/core"
)

// pointToPosition3D converts a geom.Point to core.Position3D
func pointToPosition3D(p geom.Point) core.Position3D {
	return geo.PositionFromPoint(p)
}

// sideFriendlyToJSON converts side relations to datatypes.JSON for DB storage.
func sideFriendlyToJSON(f core.SideFriendly) datatypes.JSON {
	data, _ := json.Marshal(f)
	return datatypes.JSON(data)
}

// CoreToSession converts a core.Session to a GORM model.Session.
func CoreToSession(s core.Session) model.Session {
	out := model.Session{
		MissionName:  s.MissionName,
		WorldName:    s.WorldName,
		StartTime:    s.StartTime,
		SideFriendly: sideFriendlyToJSON(s.SideFriendly),
	}
	out.ID = s.ID
	return out
}

// SessionToCore converts a GORM model.Session to a core.Session.
func SessionToCore(s model.Session) core.Session {
	var f core.SideFriendly
	if len(s.SideFriendly) > 0 {
		_ = json.Unmarshal(s.SideFriendly, &f)
	}
	return core.Session{
		ID:           s.ID,
		MissionName:  s.MissionName,
		WorldName:    s.WorldName,
		StartTime:    s.StartTime,
		SideFriendly: f,
	}
}

// CoreToSpot converts a core.SpotEvent to a GORM model.Spot.
func CoreToSpot(e core.SpotEvent, sessionID uint) model.Spot {
	return model.Spot{
		Time:         e.Time,
		SessionID:    sessionID,
		TargetID:     uint16(e.TargetID),
		TargetKind:   e.TargetKind.String(),
		TargetSide:   e.TargetSide.String(),
		ObserverID:   uint16(e.ObserverID),
		ObserverSide: e.ObserverSide.String(),
		Trackable:    e.Trackable,
		DurationMs:   e.Duration.Milliseconds(),
		Position:     geo.PointFromPosition(e.Position),
	}
}

// SpotToCore converts a GORM model.Spot to a core.SpotEvent.
func SpotToCore(s model.Spot) core.SpotEvent {
	kind, _ := core.ParseKind(s.TargetKind)
	return core.SpotEvent{
		Time:         s.Time,
		TargetID:     core.ObjectID(s.TargetID),
		TargetKind:   kind,
		TargetSide:   core.ParseSide(s.TargetSide),
		ObserverID:   core.ObjectID(s.ObserverID),
		ObserverSide: core.ParseSide(s.ObserverSide),
		Trackable:    s.Trackable,
		Duration:     time.Duration(s.DurationMs) * time.Millisecond,
		Position:     pointToPosition3D(s.Position),
	}
}

// CoreToMarkerEvent converts a core.MarkerEvent to a GORM model.MarkerEvent.
func CoreToMarkerEvent(e core.MarkerEvent, sessionID uint) model.MarkerEvent {
	return model.MarkerEvent{
		Time:       e.Time,
		SessionID:  sessionID,
		Handle:     e.Handle,
		TargetID:   uint16(e.TargetID),
		Side:       e.Side.String(),
		Action:     string(e.Action),
		Follow:     e.Follow,
		Effect:     e.Effect,
		Position:   geo.PointFromPosition(e.Position),
		LifetimeMs: e.Lifetime.Milliseconds(),
	}
}

// MarkerEventToCore converts a GORM model.MarkerEvent to a core.MarkerEvent.
func MarkerEventToCore(e model.MarkerEvent) core.MarkerEvent {
	return core.MarkerEvent{
		Time:     e.Time,
		Handle:   e.Handle,
		TargetID: core.ObjectID(e.TargetID),
		Side:     core.ParseSide(e.Side),
		Action:   core.MarkerAction(e.Action),
		Follow:   e.Follow,
		Effect:   e.Effect,
		Position: pointToPosition3D(e.Position),
		Lifetime: time.Duration(e.LifetimeMs) * time.Millisecond,
	}
}
