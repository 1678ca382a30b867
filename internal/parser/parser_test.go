package parser

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/spotting/internal/spotting"
	"github.com/OCAP2/spotting/pkg/core"
)

func newTestParser() *Parser {
	return NewParser(slog.Default())
}

func TestNewParser(t *testing.T) {
	p := newTestParser()
	require.NotNil(t, p)
}

func TestParseUintFromFloat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    uint64
		wantErr bool
	}{
		{"integer", "32", 32, false},
		{"zero", "0", 0, false},
		{"float with decimals", "32.00", 32, false},
		{"float with trailing zero", "30.0", 30, false},
		{"large integer", "65535", 65535, false},
		{"large float", "65535.00", 65535, false},
		{"fractional rejects", "10.99", 0, true},
		{"empty string", "", 0, true},
		{"non-numeric", "abc", 0, true},
		{"negative", "-1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseUintFromFloat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseObjectID_Range(t *testing.T) {
	id, err := parseObjectID("65535.00")
	require.NoError(t, err)
	assert.Equal(t, core.ObjectID(65535), id)

	_, err = parseObjectID("65536")
	assert.Error(t, err)
}

func TestParseSessionStart(t *testing.T) {
	p := newTestParser()

	s, err := p.ParseSessionStart([]string{`"op_thunder"`, `"altis"`, "[false,true,false]"})
	require.NoError(t, err)
	assert.Equal(t, "op_thunder", s.MissionName)
	assert.Equal(t, "altis", s.WorldName)
	assert.Equal(t, core.SideFriendly{EastIndependent: true}, s.SideFriendly)

	s, err = p.ParseSessionStart([]string{"m", "w"})
	require.NoError(t, err)
	assert.Equal(t, core.SideFriendly{WestIndependent: true}, s.SideFriendly, "default relations")

	_, err = p.ParseSessionStart([]string{"m"})
	assert.Error(t, err)
	_, err = p.ParseSessionStart([]string{"m", "w", "[true,false]"})
	assert.Error(t, err)
	_, err = p.ParseSessionStart([]string{"m", "w", "nope"})
	assert.Error(t, err)
}

func TestParseTargetRegister(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name    string
		data    []string
		want    spotting.Target
		wantErr bool
	}{
		{"kind name", []string{"12", "armor", "EAST"}, spotting.Target{ID: 12, Kind: core.KindArmor, Side: core.SideEast}, false},
		{"hit classification", []string{"13.00", `"tank"`, "EAST"}, spotting.Target{ID: 13, Kind: core.KindArmor, Side: core.SideEast}, false},
		{"fob", []string{"14", "fob", "GUER"}, spotting.Target{ID: 14, Kind: core.KindFortification, Side: core.SideIndependent}, false},
		{"unknown kind", []string{"15", "parachute", "EAST"}, spotting.Target{}, true},
		{"bad side", []string{"16", "man", "LOGIC"}, spotting.Target{}, true},
		{"bad id", []string{"x", "man", "EAST"}, spotting.Target{}, true},
		{"too few", []string{"16", "man"}, spotting.Target{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParseTargetRegister(tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTargetPosition(t *testing.T) {
	p := newTestParser()

	tp, err := p.ParseTargetPosition([]string{"7", `"100.5,200,3"`})
	require.NoError(t, err)
	assert.Equal(t, core.ObjectID(7), tp.TargetID)
	assert.Equal(t, core.Position3D{X: 100.5, Y: 200, Z: 3}, tp.Position)

	_, err = p.ParseTargetPosition([]string{"7", "nowhere"})
	assert.Error(t, err)
}

func TestParseTargetID(t *testing.T) {
	p := newTestParser()

	id, err := p.ParseTargetID([]string{"42.00"})
	require.NoError(t, err)
	assert.Equal(t, core.ObjectID(42), id)

	_, err = p.ParseTargetID(nil)
	assert.Error(t, err)
}

func TestParseSpot(t *testing.T) {
	p := newTestParser()

	req, err := p.ParseSpot([]string{"3", "WEST", "true", "12", "tank", "EAST", "[10,20,0]", "4.5"})
	require.NoError(t, err)
	assert.Equal(t, spotting.Observer{ID: 3, Side: core.SideWest, Trackable: true}, req.Observer)
	assert.Equal(t, spotting.Hit{
		TargetID: 12,
		HitKind:  "tank",
		Side:     core.SideEast,
		Position: core.Position3D{X: 10, Y: 20},
		Duration: 4500 * time.Millisecond,
	}, req.Hit)

	req, err = p.ParseSpot([]string{"3", "WEST", "false", "12", "man", "EAST", "1,2"})
	require.NoError(t, err)
	assert.False(t, req.Observer.Trackable)
	assert.Zero(t, req.Hit.Duration, "omitted duration falls back to the kind default")
}

func TestParseSpot_NonFiniteDurationUsesDefault(t *testing.T) {
	p := newTestParser()

	for _, value := range []string{"Inf", "-Inf", "NaN", "1e10", "1e400"} {
		t.Run(value, func(t *testing.T) {
			req, err := p.ParseSpot([]string{"3", "WEST", "true", "12", "tank", "EAST", "1,2,3", value})
			require.NoError(t, err)
			assert.Zero(t, req.Hit.Duration)
		})
	}

	req, err := p.ParseSpot([]string{"3", "WEST", "true", "12", "tank", "EAST", "1,2,3", "86400"})
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, req.Hit.Duration)
}

func TestParseSpot_Errors(t *testing.T) {
	p := newTestParser()
	valid := []string{"3", "WEST", "true", "12", "tank", "EAST", "1,2,3", "5"}

	tests := []struct {
		name  string
		index int
		value string
	}{
		{"observer id", 0, "abc"},
		{"observer side", 1, "LOGIC"},
		{"trackable", 2, "maybe"},
		{"target id", 3, "-1"},
		{"target side", 5, ""},
		{"position", 6, "1"},
		{"duration", 7, "-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append([]string(nil), valid...)
			data[tt.index] = tt.value
			_, err := p.ParseSpot(data)
			assert.Error(t, err)
		})
	}

	_, err := p.ParseSpot(valid[:6])
	assert.Error(t, err)
}

func TestParseUnspotAndObserver(t *testing.T) {
	p := newTestParser()

	u, err := p.ParseUnspot([]string{"3", "12"})
	require.NoError(t, err)
	assert.Equal(t, Unspot{ObserverID: 3, TargetID: 12}, u)

	id, err := p.ParseObserverID([]string{`"9"`})
	require.NoError(t, err)
	assert.Equal(t, core.ObjectID(9), id)

	_, err = p.ParseUnspot([]string{"3"})
	assert.Error(t, err)
}

func TestParseLaserQuery(t *testing.T) {
	p := newTestParser()

	q, err := p.ParseLaserQuery([]string{"12", "west"})
	require.NoError(t, err)
	assert.Equal(t, LaserQuery{TargetID: 12, Side: core.SideWest}, q)

	_, err = p.ParseLaserQuery([]string{"12", "nobody"})
	assert.Error(t, err)
}
