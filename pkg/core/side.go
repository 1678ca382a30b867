// pkg/core/side.go
package core

import "strings"

// Side is the team a unit or object belongs to.
type Side uint8

const (
	SideUnknown Side = iota
	SideWest
	SideEast
	SideIndependent
	SideCivilian
)

// ParseSide maps SQF side names (WEST, EAST, GUER, CIV and their long forms) to a Side.
func ParseSide(s string) Side {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WEST", "BLUFOR":
		return SideWest
	case "EAST", "OPFOR":
		return SideEast
	case "GUER", "INDEPENDENT", "RESISTANCE":
		return SideIndependent
	case "CIV", "CIVILIAN":
		return SideCivilian
	default:
		return SideUnknown
	}
}

func (s Side) String() string {
	switch s {
	case SideWest:
		return "WEST"
	case SideEast:
		return "EAST"
	case SideIndependent:
		return "GUER"
	case SideCivilian:
		return "CIV"
	default:
		return "UNKNOWN"
	}
}

// IsValid reports whether s names a real side.
func (s Side) IsValid() bool {
	return s >= SideWest && s <= SideCivilian
}

// IsCombatant reports whether s can take part in hostilities.
func (s Side) IsCombatant() bool {
	return s == SideWest || s == SideEast || s == SideIndependent
}

// SideFriendly represents which sides are allied for the current mission
type SideFriendly struct {
	EastWest        bool `json:"eastWest"`
	EastIndependent bool `json:"eastIndependent"`
	WestIndependent bool `json:"westIndependent"`
}

// IsOpponent reports whether a and b are hostile to each other.
// Civilians and unknown sides are never opponents, and a side is never its own opponent.
func (f SideFriendly) IsOpponent(a, b Side) bool {
	if !a.IsCombatant() || !b.IsCombatant() || a == b {
		return false
	}
	if a > b {
		a, b = b, a
	}
	switch {
	case a == SideWest && b == SideEast:
		return !f.EastWest
	case a == SideWest && b == SideIndependent:
		return !f.WestIndependent
	case a == SideEast && b == SideIndependent:
		return !f.EastIndependent
	}
	return false
}
