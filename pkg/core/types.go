// pkg/core/types.go
package core

import "fmt"

// ObjectID is the game's network identifier for a unit, vehicle, buildable or sensor.
type ObjectID uint16

// Position3D represents a game-world coordinate in metres
type Position3D struct {
	X float64 `json:"x"` // easting
	Y float64 `json:"y"` // northing
	Z float64 `json:"z"` // elevation ASL
}

// Add returns the component-wise sum of p and o.
func (p Position3D) Add(o Position3D) Position3D {
	return Position3D{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

// IsZero reports whether all components are zero.
func (p Position3D) IsZero() bool {
	return p.X == 0 && p.Y == 0 && p.Z == 0
}

// SQF renders the position as an SQF array literal.
func (p Position3D) SQF() string {
	return fmt.Sprintf("[%g,%g,%g]", p.X, p.Y, p.Z)
}
