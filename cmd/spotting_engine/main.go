package main

/*
#include <stdlib.h>
#include <stdio.h>
#include <string.h>
*/
import "C" // This is required to import the C code

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/OCAP2/spotting/internal/config"
	"github.com/OCAP2/spotting/internal/dispatcher"
	"github.com/OCAP2/spotting/internal/logging"
	"github.com/OCAP2/spotting/internal/mission"
	intOtel "github.com/OCAP2/spotting/internal/otel"
	"github.com/OCAP2/spotting/internal/spotting"
	"github.com/OCAP2/spotting/internal/util"
	"github.com/OCAP2/spotting/pkg/a3interface"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentExtensionVersion string = "0.0.1"
	BuildDate               string = "unknown"

	Addon         string = "spotting"
	ExtensionName string = "spotting_engine"
)

// file paths
var (
	// ArmaDir is the path to the Arma 3 root directory. This is checked in init().
	ArmaDir string

	// AddonFolder is the folder holding this library and its config. It defaults to @spotting
	// when the library sits in the Arma root.
	AddonFolder string

	// ModulePath is the absolute path to this library file.
	ModulePath string

	InitLogFilePath string
	InitLogFile     *os.File
	LogFilePath     string
	LogFile         io.WriteCloser
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// DBLogger is the zerolog logger used by the database and influx managers
	DBLogger zerolog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	SessionStartTime time.Time = time.Now()

	addonVersion string = "unknown"

	clock          = clockwork.NewRealClock()
	missionContext = mission.NewContext()

	// Services
	eventDispatcher *dispatcher.Dispatcher
	engine          *services
	startOnce       sync.Once
	startErr        error
	engineReady     atomic.Bool
)

// init is run automatically when the module is loaded
func init() {
	var err error

	ArmaDir, err = a3interface.GetArmaDir()
	if err != nil {
		panic(err)
	}

	ModulePath = a3interface.GetModulePath()

	// if the module dir is the a3 root, assume the default addon folder
	AddonFolder = filepath.Dir(ModulePath)
	if AddonFolder == ArmaDir {
		AddonFolder = filepath.Join(ArmaDir, "@"+Addon)
	}
	if _, err := os.Stat(AddonFolder); os.IsNotExist(err) {
		os.Mkdir(AddonFolder, 0755)
	}

	InitLogFilePath = filepath.Join(AddonFolder, "init.log")
	InitLogFile, err = os.Create(InitLogFilePath)
	if err != nil {
		// Log to stderr since logging isn't set up yet
		fmt.Fprintf(os.Stderr, "Failed to create init log file: %v\n", err)
	}

	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(InitLogFile, config.GetString("logLevel"), nil)
	Logger = SlogManager.Logger()

	if err := config.Load(AddonFolder); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	setupLogging()

	Logger.Info("Setting up a3interface...")
	if err := setupA3Interface(); err != nil {
		Logger.Error("Failed to set up a3interfaces!", "error", err)
		panic(err)
	}
	Logger.Info("Set up a3interfaces")

	go func() {
		if err := ensureStarted(); err != nil {
			Logger.Error("Failed to start spotting engine", "error", err)
			a3interface.WriteArmaCallback(":EXT:ERROR:", fmt.Sprintf(`["%s"]`, err))
		}
	}()
}

// setupLogging moves logging from the init log to the rotating session log,
// optionally fanned out to Graylog and OTel.
func setupLogging() {
	logsDir := config.GetString("logsDir")
	if !filepath.IsAbs(logsDir) {
		logsDir = filepath.Join(AddonFolder, logsDir)
	}
	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		os.MkdirAll(logsDir, 0755)
	}

	LogFilePath = logging.LogFilePath(logsDir, ExtensionName, SessionStartTime)
	LogFile = logging.NewRotatingFile(LogFilePath)
	Logger.Info("Begin logging in logs directory", "path", LogFilePath)

	level := config.GetString("logLevel")
	DBLogger = logging.NewZerolog(LogFile, level)

	if config.GetBool("graylog.enabled") {
		w, err := logging.NewGraylogWriter(config.GetString("graylog.address"))
		if err != nil {
			Logger.Error("Failed to connect to graylog", "error", err)
		} else {
			SlogManager.SetGraylog(w)
		}
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		var err error
		OTelProvider, err = intOtel.New(intOtel.FromConfig(otelCfg, LogFile))
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			Logger.Info("OTel provider initialized", "file", LogFilePath, "endpoint", otelCfg.Endpoint)
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	SlogManager.SetContextProvider(missionContext.LogAttrs)
	SlogManager.SetRemoteLevel(config.GetString("remoteLogLevel"))
	SlogManager.Setup(LogFile, level, otelLogProvider)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", LogFilePath)
}

func setupA3Interface() error {
	a3interface.SetVersion(CurrentExtensionVersion)
	a3interface.SetExtensionName(ExtensionName)

	// The dispatcher is live immediately so lifecycle commands work while the
	// engine is still starting; spotting commands are registered once it is up.
	d, err := dispatcher.New(logging.NewDispatcherLogger(DBLogger))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	registerLifecycleHandlers(d)
	a3interface.SetDispatcher(d)
	eventDispatcher = d

	Logger.Info("Dispatcher initialized with lifecycle handlers")
	return nil
}

func registerLifecycleHandlers(d *dispatcher.Dispatcher) {
	d.Register(":INIT:", func(e dispatcher.Event) (any, error) {
		go initExtension()
		return "ok", nil
	})

	d.Register(":VERSION:", func(e dispatcher.Event) (any, error) {
		return []string{CurrentExtensionVersion, BuildDate}, nil
	})

	d.Register(":GETDIR:ARMA:", func(e dispatcher.Event) (any, error) {
		return ArmaDir, nil
	})

	d.Register(":GETDIR:MODULE:", func(e dispatcher.Event) (any, error) {
		return ModulePath, nil
	})

	d.Register(":GETDIR:LOG:", func(e dispatcher.Event) (any, error) {
		return LogFilePath, nil
	})

	d.Register(":ADDON:VERSION:", func(e dispatcher.Event) (any, error) {
		if len(e.Args) > 0 {
			addonVersion = util.CleanArg(e.Args[0])
			Logger.Info("Addon version", "version", addonVersion)
		}
		return "ok", nil
	})

	d.Register(":READY:", func(e dispatcher.Event) (any, error) {
		return engineReady.Load(), nil
	})
}

func initExtension() {
	a3interface.WriteArmaCallback(":EXT:READY:", fmt.Sprintf(`["%s"]`, CurrentExtensionVersion))
}

// ensureStarted starts the engine once; concurrent callers wait for the first.
func ensureStarted() error {
	startOnce.Do(func() { startErr = startServices() })
	return startErr
}

// startServices builds the engine from config and registers the spotting
// commands with the dispatcher.
func startServices() error {
	stats, err := spotting.StatsFromConfig(config.GetKindConfigs())
	if err != nil {
		return fmt.Errorf("invalid spotting configuration: %w", err)
	}

	s, err := newServices(serviceConfig{
		Stats:    stats,
		Storage:  config.GetStorageConfig(),
		Icons:    config.GetIconConfig(),
		Notify:   config.GetNotifyConfig(),
		Influx:   config.GetInfluxConfig(),
		Monitor:  config.GetMonitorConfig(),
		Callback: a3interface.WriteArmaCallback,
	})
	if err != nil {
		return err
	}

	s.worker.RegisterHandlers(eventDispatcher)
	s.start()
	engine = s
	engineReady.Store(true)

	Logger.Info("Spotting engine started", "commands", len(eventDispatcher.Commands()))
	return nil
}

func main() {
	// The library is loaded by the game; running it directly replays a short
	// scripted session through the dispatcher.
	Logger.Info("Starting up...")
	if err := ensureStarted(); err != nil {
		panic(err)
	}
	if err := runDemo(eventDispatcher, os.Stdout); err != nil {
		panic(err)
	}
	engine.stop()
}
