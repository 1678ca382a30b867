package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/OCAP2/spotting/internal/config"
	"github.com/OCAP2/spotting/internal/icon"
	"github.com/OCAP2/spotting/internal/influx"
	"github.com/OCAP2/spotting/internal/monitor"
	"github.com/OCAP2/spotting/internal/notify"
	"github.com/OCAP2/spotting/internal/parser"
	"github.com/OCAP2/spotting/internal/spotting"
	"github.com/OCAP2/spotting/internal/storage"
	"github.com/OCAP2/spotting/internal/worker"
	"github.com/OCAP2/spotting/pkg/core"
)

type serviceConfig struct {
	Stats    spotting.StatsTable
	Storage  config.StorageConfig
	Icons    config.IconConfig
	Notify   config.NotifyConfig
	Influx   config.InfluxConfig
	Monitor  config.MonitorConfig
	Callback func(function, data string) error
}

// services is the running engine.
type services struct {
	backend  storage.Backend
	stream   *icon.Stream
	nats     *notify.NATS
	influx   *influx.Manager
	registry *spotting.Registry
	worker   *worker.Manager
	monitor  *monitor.Service

	cancel context.CancelFunc
	done   chan struct{}
}

func newServices(cfg serviceConfig) (*services, error) {
	s := &services{}

	backend, err := storage.NewBackend(cfg.Storage, storage.Dependencies{
		Logger:           Logger,
		DBLogger:         DBLogger,
		Clock:            clock,
		ExtensionVersion: CurrentExtensionVersion,
	})
	if err != nil {
		return nil, err
	}
	if err := backend.Init(); err != nil {
		Logger.Error("Storage backend failed to initialize, journal disabled", "type", cfg.Storage.Type, "error", err)
		backend = storage.Nop{}
	}
	s.backend = backend

	// icon sinks
	var sinks []icon.Sink
	if cfg.Icons.CallbackEnabled {
		sinks = append(sinks, icon.NewCallback(cfg.Callback, Logger))
	}
	var hooks []worker.SessionHook
	if cfg.Icons.WebsocketEnabled {
		s.stream = icon.NewStream(icon.StreamConfig{URL: cfg.Icons.WebsocketURL, Secret: cfg.Icons.WebsocketSecret}, Logger)
		if err := s.stream.Init(); err != nil {
			Logger.Error("Icon stream failed to connect", "url", cfg.Icons.WebsocketURL, "error", err)
			s.stream = nil
		} else {
			sinks = append(sinks, s.stream)
			hooks = append(hooks, s.stream)
		}
	}
	sink := icon.NewRecorder(icon.Fanout(sinks...), backend, clock, Logger)

	// notifiers
	notifiers := []notify.Notifier{
		notify.NewLog(Logger),
		notify.NewJournal(backend, Logger),
	}
	if cfg.Notify.ChatEnabled {
		notifiers = append(notifiers, notify.NewCallback(cfg.Callback, Logger))
	}
	if cfg.Notify.NATSEnabled {
		s.nats, err = notify.ConnectNATS(cfg.Notify.NATSURL, cfg.Notify.NATSSubjectPrefix, Logger)
		if err != nil {
			Logger.Error("NATS notifications disabled", "error", err)
		} else {
			notifiers = append(notifiers, s.nats)
		}
	}
	if cfg.Influx.Enabled {
		s.influx = influx.NewManager(cfg.Influx, DBLogger, filepath.Join(AddonFolder, "influx_backup.log.gzip"))
		if err := s.influx.Connect(); err != nil {
			Logger.Error("InfluxDB disabled", "error", err)
			s.influx = nil
		} else {
			notifiers = append(notifiers, s.influx)
		}
	}

	s.registry, err = spotting.NewRegistry(spotting.Dependencies{
		Stats:     cfg.Stats,
		Sink:      sink,
		Relations: missionContext,
		Notifier:  notify.Multi(notifiers...),
		Clock:     clock,
		Logger:    Logger,
	})
	if err != nil {
		return nil, err
	}

	hooks = append(hooks, &sessionEndHook{backend: backend, callback: cfg.Callback})
	s.worker = worker.NewManager(worker.Dependencies{
		Registry: s.registry,
		Parser:   parser.NewParser(Logger),
		Mission:  missionContext,
		Backend:  backend,
		Hooks:    hooks,
		Clock:    clock,
		Logger:   Logger,
	})

	if cfg.Monitor.Enabled {
		deps := monitor.Dependencies{
			Registry:       s.registry,
			MissionContext: missionContext,
			WriteDurations: s.worker,
			AddonFolder:    AddonFolder,
			Interval:       cfg.Monitor.Interval,
			Clock:          clock,
			Logger:         Logger,
		}
		if s.influx != nil {
			deps.Influx = s.influx
		}
		s.monitor = monitor.NewService(deps)
	}

	return s, nil
}

// start launches the expiry loop and the status monitor.
func (s *services) start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		s.registry.Run(ctx)
	}()
	if s.monitor != nil {
		s.monitor.Start()
	}
}

// stop tears the engine down in reverse order of construction.
func (s *services) stop() {
	if s.monitor != nil {
		s.monitor.Stop()
	}
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	if s.worker.SessionActive() {
		eventDispatcher.Dispatch(dispatcherEvent(":SESSION:END:"))
	}
	if err := s.backend.Close(); err != nil {
		Logger.Error("Failed to close storage backend", "error", err)
	}
	if s.stream != nil {
		s.stream.Close()
	}
	if s.nats != nil {
		s.nats.Close()
	}
	if s.influx != nil {
		s.influx.Close()
	}
	if OTelProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		OTelProvider.Shutdown(ctx)
	}
}

// sessionEndHook reports the exported journal file back to the game and
// flushes OTel at the end of every session.
type sessionEndHook struct {
	backend  storage.Backend
	callback func(function, data string) error
}

func (h *sessionEndHook) StartSession(*core.Session) error { return nil }

func (h *sessionEndHook) EndSession() error {
	if exp, ok := h.backend.(storage.Exportable); ok {
		if path := exp.GetExportedFilePath(); path != "" {
			Logger.Info("Session journal exported", "path", path)
			if err := h.callback(":STORAGE:EXPORTED:", fmt.Sprintf(`["%s"]`, path)); err != nil {
				Logger.Debug("Export callback not delivered", "error", err)
			}
		}
	}
	if OTelProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := OTelProvider.Flush(ctx); err != nil {
			Logger.Warn("Failed to flush OTel data", "error", err)
		}
	}
	return nil
}
