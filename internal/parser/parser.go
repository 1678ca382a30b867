// Package parser converts raw extension arguments into typed spotting requests.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/OCAP2/spotting/internal/util"
	"github.com/OCAP2/spotting/pkg/core"
)

// parseUintFromFloat parses a string that may be an integer ("32") or float ("32.00") into uint64.
// ArmA 3's SQF has no integer type, so the extension API may serialize numbers as floats.
func parseUintFromFloat(s string) (uint64, error) {
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != float64(uint64(f)) {
		return 0, fmt.Errorf("parseUintFromFloat: %q is not a valid uint64", s)
	}
	return uint64(f), nil
}

// parseObjectID parses a network object id, rejecting values outside uint16.
func parseObjectID(s string) (core.ObjectID, error) {
	v, err := parseUintFromFloat(s)
	if err != nil {
		return 0, err
	}
	if v > 0xFFFF {
		return 0, fmt.Errorf("object id %d out of range", v)
	}
	return core.ObjectID(v), nil
}

// maxSeconds is the largest number of seconds a time.Duration can hold.
const maxSeconds = float64(math.MaxInt64) / float64(time.Second)

// parseSeconds parses a non-negative SQF number of seconds. Values that are
// not finite, or too large for a time.Duration, yield 0 so the caller falls
// back to the kind default.
func parseSeconds(s string) (time.Duration, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= maxSeconds {
		return 0, nil
	}
	if f < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return time.Duration(f * float64(time.Second)), nil
}

// parseCombatSide parses an SQF side name, rejecting anything that is not a real side.
func parseCombatSide(s string) (core.Side, error) {
	side := core.ParseSide(s)
	if !side.IsValid() {
		return core.SideUnknown, fmt.Errorf("unknown side %q", s)
	}
	return side, nil
}

// Parser provides pure []string -> request struct conversion.
// It has zero external dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// clean fixes quoting on every argument in place.
func clean(data []string) {
	for i, v := range data {
		data[i] = util.CleanArg(v)
	}
}

// requireArgs returns an error unless data has at least n elements.
func requireArgs(cmd string, data []string, n int) error {
	if len(data) < n {
		return fmt.Errorf("%s: expected %d args, got %d", cmd, n, len(data))
	}
	return nil
}
