package geo

import (
	"errors"
	"testing"

	"github.com/OCAP2/spotting/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

func TestPosition3DFromString_Valid(t *testing.T) {
	tests := []struct {
		in   string
		want core.Position3D
	}{
		{"100.5,200.25,50.0", core.Position3D{X: 100.5, Y: 200.25, Z: 50}},
		{"100.5,200.25", core.Position3D{X: 100.5, Y: 200.25}},
		{"-100.5,-200.25,-50", core.Position3D{X: -100.5, Y: -200.25, Z: -50}},
		{"[1, 2, 3]", core.Position3D{X: 1, Y: 2, Z: 3}},
		{" 0,0,0 ", core.Position3D{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Position3DFromString(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestPosition3DFromString_Invalid(t *testing.T) {
	for _, in := range []string{"", "100.5", "abc,200", "1,xyz", "1,2,zz", "1,2,3,4"} {
		t.Run(in, func(t *testing.T) {
			_, err := Position3DFromString(in)
			if !errors.Is(err, ErrInvalidCoordinates) {
				t.Errorf("expected ErrInvalidCoordinates, got %v", err)
			}
		})
	}
}

func TestPointFromPosition(t *testing.T) {
	p := core.Position3D{X: 4500.5, Y: 6200.25, Z: 12}
	pt := PointFromPosition(p)

	coords, ok := pt.Coordinates()
	if !ok {
		t.Fatal("expected valid coordinates")
	}
	if coords.Type != geom.DimXYZ {
		t.Errorf("expected XYZ point, got %v", coords.Type)
	}
	if got := PositionFromPoint(pt); got != p {
		t.Errorf("expected %+v, got %+v", p, got)
	}
}

func TestPositionFromPoint_Empty(t *testing.T) {
	if got := PositionFromPoint(geom.NewEmptyPoint(geom.DimXYZ)); !got.IsZero() {
		t.Errorf("expected zero position, got %+v", got)
	}
}

func TestOffset(t *testing.T) {
	got := Offset(core.Position3D{X: 1, Y: 2, Z: 3}, core.Position3D{Z: 2})
	if got != (core.Position3D{X: 1, Y: 2, Z: 5}) {
		t.Errorf("unexpected offset result %+v", got)
	}
}
