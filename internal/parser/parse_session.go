package parser

import (
	"fmt"

	"github.com/OCAP2/spotting/internal/util"
	"github.com/OCAP2/spotting/pkg/core"
)

// ParseSessionStart parses [missionName, worldName, sideFriendly].
// sideFriendly is "[eastWest,eastIndependent,westIndependent]" and may be omitted.
func (p *Parser) ParseSessionStart(data []string) (SessionStart, error) {
	var s SessionStart
	if err := requireArgs(":SESSION:START:", data, 2); err != nil {
		return s, err
	}
	clean(data)

	s.MissionName = data[0]
	s.WorldName = data[1]
	s.SideFriendly = core.SideFriendly{WestIndependent: true}

	if len(data) > 2 {
		flags, err := util.ParseSQFBoolArray(data[2])
		if err != nil {
			return s, fmt.Errorf("error parsing sideFriendly: %w", err)
		}
		if len(flags) != 3 {
			return s, fmt.Errorf("sideFriendly: expected 3 flags, got %d", len(flags))
		}
		s.SideFriendly = core.SideFriendly{
			EastWest:        flags[0],
			EastIndependent: flags[1],
			WestIndependent: flags[2],
		}
	}

	p.logger.Debug("Parsed session start",
		"missionName", s.MissionName,
		"worldName", s.WorldName)

	return s, nil
}
