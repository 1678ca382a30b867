package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/OCAP2/spotting/pkg/core"
)

// SessionExport is the root JSON structure
type SessionExport struct {
	SessionID    uint              `json:"sessionId"`
	MissionName  string            `json:"missionName"`
	WorldName    string            `json:"worldName"`
	StartTime    time.Time         `json:"startTime"`
	EndTime      time.Time         `json:"endTime"`
	Duration     float64           `json:"duration"` // seconds
	SideFriendly core.SideFriendly `json:"sideFriendly"`
	Summary      ExportSummary     `json:"summary"`
	Spots        []SpotJSON        `json:"spots"`
	Markers      []MarkerJSON      `json:"markers"`
}

// ExportSummary aggregates the journal
type ExportSummary struct {
	Spots          int            `json:"spots"`
	MarkerEvents   int            `json:"markerEvents"`
	Targets        int            `json:"targets"`
	SpotsBySide    map[string]int `json:"spotsBySide"`
	MarkersCreated int            `json:"markersCreated"`
	MarkersRemoved int            `json:"markersRemoved"`
	TrackableSpots int            `json:"trackableSpots"`
	SnapshotSpots  int            `json:"snapshotSpots"`
}

// SpotJSON is one spot. Offset is seconds since session start.
type SpotJSON struct {
	Offset       float64    `json:"offset"`
	TargetID     uint16     `json:"targetId"`
	TargetKind   string     `json:"targetKind"`
	TargetSide   string     `json:"targetSide"`
	ObserverID   uint16     `json:"observerId"`
	ObserverSide string     `json:"observerSide"`
	Trackable    bool       `json:"trackable"`
	Duration     float64    `json:"duration"`
	Position     [3]float64 `json:"position"`
}

// MarkerJSON is one marker lifecycle step. Offset is seconds since session start.
type MarkerJSON struct {
	Offset   float64    `json:"offset"`
	Handle   string     `json:"handle"`
	TargetID uint16     `json:"targetId"`
	Side     string     `json:"side"`
	Action   string     `json:"action"`
	Follow   bool       `json:"follow"`
	Effect   string     `json:"effect,omitempty"`
	Position [3]float64 `json:"position"`
	Lifetime float64    `json:"lifetime"`
}

func position(p core.Position3D) [3]float64 {
	return [3]float64{p.X, p.Y, p.Z}
}

// exportJSON writes the session data to a (possibly gzipped) JSON file
func (b *Backend) exportJSON(end time.Time) error {
	export := b.buildExport(end)

	// Build filename
	missionName := strings.ReplaceAll(b.session.MissionName, " ", "_")
	missionName = strings.ReplaceAll(missionName, ":", "_")
	timestamp := b.session.StartTime.UTC().Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", missionName, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", missionName, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write file
	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport(end time.Time) SessionExport {
	start := b.session.StartTime
	export := SessionExport{
		SessionID:    b.session.ID,
		MissionName:  b.session.MissionName,
		WorldName:    b.session.WorldName,
		StartTime:    start,
		EndTime:      end,
		Duration:     end.Sub(start).Seconds(),
		SideFriendly: b.session.SideFriendly,
		Summary: ExportSummary{
			Spots:        len(b.spots),
			MarkerEvents: len(b.markers),
			SpotsBySide:  make(map[string]int),
		},
		Spots:   make([]SpotJSON, 0, len(b.spots)),
		Markers: make([]MarkerJSON, 0, len(b.markers)),
	}

	targets := make(map[core.ObjectID]struct{})
	for _, s := range b.spots {
		targets[s.TargetID] = struct{}{}
		export.Summary.SpotsBySide[s.ObserverSide.String()]++
		if s.Trackable {
			export.Summary.TrackableSpots++
		} else {
			export.Summary.SnapshotSpots++
		}
		export.Spots = append(export.Spots, SpotJSON{
			Offset:       s.Time.Sub(start).Seconds(),
			TargetID:     uint16(s.TargetID),
			TargetKind:   s.TargetKind.String(),
			TargetSide:   s.TargetSide.String(),
			ObserverID:   uint16(s.ObserverID),
			ObserverSide: s.ObserverSide.String(),
			Trackable:    s.Trackable,
			Duration:     s.Duration.Seconds(),
			Position:     position(s.Position),
		})
	}
	export.Summary.Targets = len(targets)

	for _, m := range b.markers {
		switch m.Action {
		case core.MarkerCreated:
			export.Summary.MarkersCreated++
		case core.MarkerRemoved:
			export.Summary.MarkersRemoved++
		}
		export.Markers = append(export.Markers, MarkerJSON{
			Offset:   m.Time.Sub(start).Seconds(),
			Handle:   m.Handle,
			TargetID: uint16(m.TargetID),
			Side:     m.Side.String(),
			Action:   string(m.Action),
			Follow:   m.Follow,
			Effect:   m.Effect,
			Position: position(m.Position),
			Lifetime: m.Lifetime.Seconds(),
		})
	}

	return export
}

func writeJSON(path string, data SessionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data SessionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}
