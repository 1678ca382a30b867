// pkg/core/kind.go
package core

import "strings"

// Kind classifies a spottable target. It decides the default spot duration,
// the marker effect and the marker offset.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInfantry
	KindFortification
	KindLightVehicle
	KindArmor
	KindAircraft
	KindEmplacement
	KindSensor
)

// Kinds lists every spottable kind in declaration order.
var Kinds = []Kind{
	KindInfantry,
	KindFortification,
	KindLightVehicle,
	KindArmor,
	KindAircraft,
	KindEmplacement,
	KindSensor,
}

var kindNames = map[Kind]string{
	KindInfantry:      "infantry",
	KindFortification: "fortification",
	KindLightVehicle:  "lightVehicle",
	KindArmor:         "armor",
	KindAircraft:      "aircraft",
	KindEmplacement:   "emplacement",
	KindSensor:        "sensor",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind returns the Kind whose configuration name is s (case-insensitive).
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return k, true
		}
	}
	return KindUnknown, false
}

// hitKinds maps raw hit classifications sent by the game (unit and OCAP vehicle
// types, buildables, sensors) to spottable kinds.
var hitKinds = map[string]Kind{
	"man":           KindInfantry,
	"soldier":       KindInfantry,
	"unit":          KindInfantry,
	"car":           KindLightVehicle,
	"truck":         KindLightVehicle,
	"sea":           KindLightVehicle,
	"apc":           KindArmor,
	"tank":          KindArmor,
	"heli":          KindAircraft,
	"plane":         KindAircraft,
	"static-weapon": KindEmplacement,
	"static-mortar": KindEmplacement,
	"emplacement":   KindEmplacement,
	"building":      KindFortification,
	"buildable":     KindFortification,
	"fortification": KindFortification,
	"fob":           KindFortification,
	"uav":           KindSensor,
	"ugv":           KindSensor,
	"sensor":        KindSensor,
}

// ClassifyHit resolves a raw hit classification to a Kind.
// Unsupported classifications (parachutes, props, unknown) return false.
func ClassifyHit(hitKind string) (Kind, bool) {
	k, ok := hitKinds[strings.ToLower(strings.TrimSpace(hitKind))]
	return k, ok
}
