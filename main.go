package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/camgrab/cmd"
	"github.com/smazurov/camgrab/internal/api"
	"github.com/smazurov/camgrab/internal/config"
	"github.com/smazurov/camgrab/internal/events"
	"github.com/smazurov/camgrab/internal/logging"
	"github.com/smazurov/camgrab/internal/metrics"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8080" toml:"server.port" env:"SERVER_PORT"`

	// Capture settings
	CaptureWaitTimeoutMs int `help:"Per-attempt frame wait timeout in milliseconds" default:"5000" toml:"capture.wait_timeout_ms" env:"CAPTURE_WAIT_TIMEOUT_MS"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingAcquire string `help:"Acquisition core logging level" default:"info" toml:"logging.acquire" env:"LOGGING_ACQUIRE"`
	LoggingCamera  string `help:"Camera driver logging level" default:"info" toml:"logging.camera" env:"LOGGING_CAMERA"`
	LoggingDevices string `help:"Device detector logging level" default:"info" toml:"logging.devices" env:"LOGGING_DEVICES"`
	LoggingCapture string `help:"Capture logging level" default:"info" toml:"logging.capture" env:"LOGGING_CAPTURE"`
	LoggingAPI     string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, nil); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging system
		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"acquire": opts.LoggingAcquire,
				"camera":  opts.LoggingCamera,
				"devices": opts.LoggingDevices,
				"capture": opts.LoggingCapture,
				"api":     opts.LoggingAPI,
			},
		})

		logger := logging.GetLogger("main")

		// Create event bus for in-process event handling
		eventBus := events.New()

		server := api.NewServer(&api.Options{
			AuthUsername:      opts.AuthUsername,
			AuthPassword:      opts.AuthPassword,
			CaptureTimeout:    time.Duration(opts.CaptureWaitTimeoutMs) * time.Millisecond,
			EventBus:          eventBus,
			PrometheusHandler: metrics.HTTPHandler(),
		})

		// Hot-reload logging levels when the config file changes
		logWatcher := config.NewConfigWatcher(
			opts.Config,
			func(path string) (logging.Config, error) {
				return config.LoadLoggingConfig(path), nil
			},
			logger,
		)
		logWatcher.OnReload(func(cfg logging.Config) {
			logger.Info("Reloading logging configuration")
			logging.Initialize(cfg)
		})

		hooks.OnStart(func() {
			if err := logWatcher.Start(); err != nil {
				logger.Warn("Failed to start config watcher", "error", err)
			}

			// Tell systemd we are ready before blocking on the listener
			if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
				logger.Warn("Failed to notify systemd", "error", err)
			} else if sent {
				logger.Debug("Notified systemd of readiness")
			}

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			if stopErr := logWatcher.Stop(); stopErr != nil {
				logger.Warn("Error stopping config watcher", "error", stopErr)
			}
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}
		})
	})

	cli.Root().Use = "camgrab"
	cli.Root().AddCommand(cmd.CreateDevicesCmd())
	cli.Root().AddCommand(cmd.CreateGrabCmd())
	cli.Root().AddCommand(cmd.CreateUpdateCmd())

	cli.Run()
}
