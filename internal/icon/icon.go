// Package icon defines the world-icon sink the spotting engine drives and the
// sinks that render or record those icons.
package icon

import (
	"time"

	"github.com/google/uuid"

	"github.com/OCAP2/spotting/pkg/core"
)

// Handle identifies one placed icon.
type Handle string

// NewHandle returns a fresh random handle.
func NewHandle() Handle {
	return Handle(uuid.NewString())
}

// Spec describes an icon to place.
type Spec struct {
	// Handle is assigned by Create when empty.
	Handle   Handle
	TargetID core.ObjectID
	Side     core.Side
	// Follow binds the icon to TargetID's live position; otherwise it stays at Position.
	Follow   bool
	Position core.Position3D
	Offset   core.Position3D
	Effect   string
	Lifetime time.Duration
	TickRate time.Duration
}

// Sink creates, refreshes and destroys icons. Sinks never fail the caller:
// delivery problems are theirs to log.
type Sink interface {
	Create(spec Spec) Handle
	KeepAlive(h Handle, lifetime time.Duration)
	SetSnapshotPosition(h Handle, pos core.Position3D)
	Remove(h Handle)
}

func assignHandle(spec *Spec) {
	if spec.Handle == "" {
		spec.Handle = NewHandle()
	}
}

type fanout struct {
	sinks []Sink
}

// Fanout returns a Sink that forwards every call to all sinks under one shared handle.
func Fanout(sinks ...Sink) Sink {
	valid := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			valid = append(valid, s)
		}
	}
	return &fanout{sinks: valid}
}

func (f *fanout) Create(spec Spec) Handle {
	assignHandle(&spec)
	for _, s := range f.sinks {
		s.Create(spec)
	}
	return spec.Handle
}

func (f *fanout) KeepAlive(h Handle, lifetime time.Duration) {
	for _, s := range f.sinks {
		s.KeepAlive(h, lifetime)
	}
}

func (f *fanout) SetSnapshotPosition(h Handle, pos core.Position3D) {
	for _, s := range f.sinks {
		s.SetSnapshotPosition(h, pos)
	}
}

func (f *fanout) Remove(h Handle) {
	for _, s := range f.sinks {
		s.Remove(h)
	}
}
