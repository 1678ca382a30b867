package parser

import (
	"fmt"

	"github.com/OCAP2/spotting/internal/geo"
	"github.com/OCAP2/spotting/internal/spotting"
	"github.com/OCAP2/spotting/internal/util"
	"github.com/OCAP2/spotting/pkg/core"
)

// ParseSpot parses [observerID, observerSide, trackable, targetID, hitKind,
// targetSide, "x,y,z", durationSeconds?]. The hit kind is passed through
// unclassified; the registry decides whether it is spottable.
func (p *Parser) ParseSpot(data []string) (SpotRequest, error) {
	var req SpotRequest
	if err := requireArgs(":SPOT:", data, 7); err != nil {
		return req, err
	}
	clean(data)

	observerID, err := parseObjectID(data[0])
	if err != nil {
		return req, fmt.Errorf("error converting observerId: %w", err)
	}
	observerSide, err := parseCombatSide(data[1])
	if err != nil {
		return req, fmt.Errorf("observer: %w", err)
	}
	trackable, err := util.ParseSQFBool(data[2])
	if err != nil {
		return req, fmt.Errorf("error converting trackable: %w", err)
	}
	targetID, err := parseObjectID(data[3])
	if err != nil {
		return req, fmt.Errorf("error converting targetId: %w", err)
	}
	targetSide, err := parseCombatSide(data[5])
	if err != nil {
		return req, fmt.Errorf("target: %w", err)
	}
	pos, err := geo.Position3DFromString(data[6])
	if err != nil {
		return req, fmt.Errorf("error parsing position: %w", err)
	}

	req.Observer = spotting.Observer{ID: observerID, Side: observerSide, Trackable: trackable}
	req.Hit = spotting.Hit{
		TargetID: targetID,
		HitKind:  data[4],
		Side:     targetSide,
		Position: pos,
	}

	if len(data) > 7 && data[7] != "" {
		d, err := parseSeconds(data[7])
		if err != nil {
			return req, fmt.Errorf("error converting duration: %w", err)
		}
		req.Hit.Duration = d
	}

	return req, nil
}

// ParseUnspot parses [observerID, targetID].
func (p *Parser) ParseUnspot(data []string) (Unspot, error) {
	var u Unspot
	if err := requireArgs(":UNSPOT:", data, 2); err != nil {
		return u, err
	}
	clean(data)

	observerID, err := parseObjectID(data[0])
	if err != nil {
		return u, fmt.Errorf("error converting observerId: %w", err)
	}
	targetID, err := parseObjectID(data[1])
	if err != nil {
		return u, fmt.Errorf("error converting targetId: %w", err)
	}

	u.ObserverID = observerID
	u.TargetID = targetID
	return u, nil
}

// ParseObserverID parses [observerID].
func (p *Parser) ParseObserverID(data []string) (core.ObjectID, error) {
	if err := requireArgs(":OBSERVER:REMOVED:", data, 1); err != nil {
		return 0, err
	}
	clean(data)

	id, err := parseObjectID(data[0])
	if err != nil {
		return 0, fmt.Errorf("error converting observerId: %w", err)
	}
	return id, nil
}
