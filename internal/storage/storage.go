// Package storage defines the spotting journal and selects its backend.
package storage

import "github.com/OCAP2/spotting/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management (StartSession assigns ID to the passed pointer)
	StartSession(s *core.Session) error
	EndSession() error

	// Journal
	RecordSpot(e *core.SpotEvent) error
	RecordMarker(e *core.MarkerEvent) error
}

// Exportable is an optional interface for backends that write a file
// at session end.
type Exportable interface {
	GetExportedFilePath() string
}

// Nop discards everything. Used when storage.type is "none".
type Nop struct{}

func (Nop) Init() error                          { return nil }
func (Nop) Close() error                         { return nil }
func (Nop) StartSession(*core.Session) error     { return nil }
func (Nop) EndSession() error                    { return nil }
func (Nop) RecordSpot(*core.SpotEvent) error     { return nil }
func (Nop) RecordMarker(*core.MarkerEvent) error { return nil }
