package streaming

import (
	"encoding/json"

	"github.com/OCAP2/spotting/pkg/core"
)

// Message type constants matching the icon streaming protocol.
const (
	TypeStartSession  = "start_session"
	TypeEndSession    = "end_session"
	TypeIconCreate    = "icon_create"
	TypeIconKeepAlive = "icon_keepalive"
	TypeIconSnapshot  = "icon_snapshot"
	TypeIconRemove    = "icon_remove"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartSessionPayload carries the mission being served.
type StartSessionPayload struct {
	Session *core.Session `json:"session"`
}

// IconCreatePayload places a new world icon.
type IconCreatePayload struct {
	Handle     string          `json:"handle"`
	TargetID   core.ObjectID   `json:"targetId"`
	Side       string          `json:"side"`
	Follow     bool            `json:"follow"`
	Position   core.Position3D `json:"position"`
	Offset     core.Position3D `json:"offset"`
	Effect     string          `json:"effect"`
	LifetimeMs int64           `json:"lifetimeMs"`
	TickRateMs int64           `json:"tickRateMs"`
}

// IconKeepAlivePayload resets an icon's remaining lifetime.
type IconKeepAlivePayload struct {
	Handle     string `json:"handle"`
	LifetimeMs int64  `json:"lifetimeMs"`
}

// IconSnapshotPayload moves a fixed-point icon.
type IconSnapshotPayload struct {
	Handle   string          `json:"handle"`
	Position core.Position3D `json:"position"`
}

// IconRemovePayload destroys an icon.
type IconRemovePayload struct {
	Handle string `json:"handle"`
}
