// Package monitor periodically writes the engine status to status.txt and InfluxDB.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/jonboulle/clockwork"

	"github.com/OCAP2/spotting/internal/influx"
	"github.com/OCAP2/spotting/internal/mission"
	"github.com/OCAP2/spotting/internal/spotting"
)

// StatusFileName is written inside the addon folder.
const StatusFileName = "status.txt"

// SummarySource reports the registry state.
type SummarySource interface {
	Summary() spotting.Summary
}

// WriteDurationSource reports how long the last journal write took.
type WriteDurationSource interface {
	GetLastDBWriteDuration() time.Duration
}

// PointWriter receives status points.
type PointWriter interface {
	WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Registry       SummarySource
	MissionContext *mission.Context
	WriteDurations WriteDurationSource
	Influx         PointWriter
	AddonFolder    string
	Interval       time.Duration
	Clock          clockwork.Clock
	Logger         *slog.Logger
}

// Status is one status sample.
type Status struct {
	Time                time.Time        `json:"time"`
	SessionID           uint             `json:"sessionId"`
	Mission             string           `json:"mission"`
	World               string           `json:"world"`
	Registry            spotting.Summary `json:"registry"`
	LastWriteDurationMs int64            `json:"lastWriteDurationMs"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetProgramStatus samples the current state.
func (s *Service) GetProgramStatus() Status {
	session := s.deps.MissionContext.GetSession()
	st := Status{
		Time:      s.deps.Clock.Now(),
		SessionID: session.ID,
		Mission:   session.MissionName,
		World:     session.WorldName,
		Registry:  s.deps.Registry.Summary(),
	}
	if s.deps.WriteDurations != nil {
		st.LastWriteDurationMs = s.deps.WriteDurations.GetLastDBWriteDuration().Milliseconds()
	}
	return st
}

// StatusPoint converts a status sample to an influx point.
func StatusPoint(st Status) *influxdb2_write.Point {
	p := influxdb2.NewPoint("engine_state",
		map[string]string{
			"mission": st.Mission,
			"world":   st.World,
		},
		map[string]any{
			"entities":            st.Registry.Entities,
			"observed":            st.Registry.Observed,
			"records":             st.Registry.Records,
			"markers":             st.Registry.Markers,
			"liveMarkers":         st.Registry.LiveMarkers,
			"pendingWakeups":      st.Registry.PendingWakeups,
			"observers":           st.Registry.Observers,
			"spots":               st.Registry.Spots,
			"rejected":            st.Registry.Rejected,
			"lastWriteDurationMs": st.LastWriteDurationMs,
		},
		st.Time,
	)
	for side, n := range st.Registry.MarkersBySide {
		p.AddField("markers_"+side, n)
	}
	return p
}

// WriteStatus samples once, rewrites the status file and sends the point.
func (s *Service) WriteStatus() error {
	st := s.GetProgramStatus()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}
	path := filepath.Join(s.deps.AddonFolder, StatusFileName)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write status file: %w", err)
	}

	if s.deps.Influx != nil {
		if err := s.deps.Influx.WritePoint(context.Background(), influx.BucketPerformance, StatusPoint(st)); err != nil {
			return fmt.Errorf("failed to write status point: %w", err)
		}
	}
	return nil
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.loop(s.stopChan, s.done)
	return nil
}

func (s *Service) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()

	s.deps.Logger.Debug("Starting status monitor", "interval", s.deps.Interval)
	ticker := s.deps.Clock.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			if s.deps.MissionContext.GetSession().ID == 0 {
				continue
			}
			if err := s.WriteStatus(); err != nil {
				s.deps.Logger.Error("Status monitor write failed", "error", err)
			}
		}
	}
}

// Stop stops the status monitor and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
