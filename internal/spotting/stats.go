package spotting

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/OCAP2/spotting/internal/config"
	"github.com/OCAP2/spotting/pkg/core"
)

// ErrMissingStats is returned when a target kind has no usable stats.
var ErrMissingStats = errors.New("missing spotting stats")

// Stats is the static spotting configuration of one target kind.
type Stats struct {
	Duration      time.Duration
	TickFrequency time.Duration
	Effect        string
	Offset        core.Position3D
}

// StatsTable maps every spottable kind to its stats.
type StatsTable map[core.Kind]Stats

// Lookup returns the stats for kind.
func (t StatsTable) Lookup(kind core.Kind) (Stats, error) {
	s, ok := t[kind]
	if !ok {
		return Stats{}, fmt.Errorf("%w for kind %s", ErrMissingStats, kind)
	}
	if s.Duration <= 0 {
		return Stats{}, fmt.Errorf("%w: kind %s has non-positive duration %s", ErrMissingStats, kind, s.Duration)
	}
	return s, nil
}

// Validate checks that every spottable kind has usable stats.
func (t StatsTable) Validate() error {
	var errs []error
	for _, k := range core.Kinds {
		if _, err := t.Lookup(k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StatsFromConfig converts the per-kind configuration into a validated table.
func StatsFromConfig(cfgs map[string]config.KindConfig) (StatsTable, error) {
	names := make([]string, 0, len(cfgs))
	for name := range cfgs {
		names = append(names, name)
	}
	sort.Strings(names)

	t := make(StatsTable, len(cfgs))
	for _, name := range names {
		kind, ok := core.ParseKind(name)
		if !ok {
			return nil, fmt.Errorf("unknown spotting kind %q in config", name)
		}
		c := cfgs[name]
		t[kind] = Stats{
			Duration:      c.Duration,
			TickFrequency: c.TickFrequency,
			Effect:        c.Effect,
			Offset:        core.Position3D{X: c.Offset.X, Y: c.Offset.Y, Z: c.Offset.Z},
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
