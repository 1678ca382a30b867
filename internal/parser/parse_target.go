package parser

import (
	"fmt"

	"github.com/OCAP2/spotting/internal/geo"
	"github.com/OCAP2/spotting/internal/spotting"
	"github.com/OCAP2/spotting/pkg/core"
)

// ParseTargetRegister parses [targetID, kind, side]. kind is either a
// configured kind name or a raw hit classification.
func (p *Parser) ParseTargetRegister(data []string) (spotting.Target, error) {
	var target spotting.Target
	if err := requireArgs(":TARGET:REGISTER:", data, 3); err != nil {
		return target, err
	}
	clean(data)

	id, err := parseObjectID(data[0])
	if err != nil {
		return target, fmt.Errorf("error converting targetId: %w", err)
	}
	kind, ok := core.ParseKind(data[1])
	if !ok {
		kind, ok = core.ClassifyHit(data[1])
	}
	if !ok {
		return target, fmt.Errorf("unsupported target kind %q", data[1])
	}
	side, err := parseCombatSide(data[2])
	if err != nil {
		return target, err
	}

	target.ID = id
	target.Kind = kind
	target.Side = side
	return target, nil
}

// ParseTargetID parses [targetID].
func (p *Parser) ParseTargetID(data []string) (core.ObjectID, error) {
	if err := requireArgs("target", data, 1); err != nil {
		return 0, err
	}
	clean(data)

	id, err := parseObjectID(data[0])
	if err != nil {
		return 0, fmt.Errorf("error converting targetId: %w", err)
	}
	return id, nil
}

// ParseTargetPosition parses [targetID, "x,y,z"].
func (p *Parser) ParseTargetPosition(data []string) (TargetPosition, error) {
	var tp TargetPosition
	if err := requireArgs(":TARGET:POSITION:", data, 2); err != nil {
		return tp, err
	}
	clean(data)

	id, err := parseObjectID(data[0])
	if err != nil {
		return tp, fmt.Errorf("error converting targetId: %w", err)
	}
	pos, err := geo.Position3DFromString(data[1])
	if err != nil {
		return tp, fmt.Errorf("error parsing position: %w", err)
	}

	tp.TargetID = id
	tp.Position = pos
	return tp, nil
}

// ParseLaserQuery parses [targetID, side].
func (p *Parser) ParseLaserQuery(data []string) (LaserQuery, error) {
	var q LaserQuery
	if err := requireArgs(":LASER:TARGET:", data, 2); err != nil {
		return q, err
	}
	clean(data)

	id, err := parseObjectID(data[0])
	if err != nil {
		return q, fmt.Errorf("error converting targetId: %w", err)
	}
	side, err := parseCombatSide(data[1])
	if err != nil {
		return q, err
	}

	q.TargetID = id
	q.Side = side
	return q, nil
}
