package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/internal/logger"
	"github.com/marmos91/binlayout/internal/telemetry"
	"github.com/marmos91/binlayout/pkg/api"
	"github.com/marmos91/binlayout/pkg/codec"
	"github.com/marmos91/binlayout/pkg/config"
	"github.com/marmos91/binlayout/pkg/metrics"
	promMetrics "github.com/marmos91/binlayout/pkg/metrics/prometheus"
	"github.com/marmos91/binlayout/pkg/registry"
)

var (
	servePort     int
	serveWatchDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP codec service",
	Long: `Run the HTTP codec service on top of the configured layout registry.

The service exposes health probes, layout management and encode, decode and
size endpoints under /api/v1. Metrics are served when enabled in the
configuration. Send SIGINT or SIGTERM for a graceful shutdown.

Examples:
  # Serve with the default configuration
  binlayout serve

  # Serve a directory of descriptor files, reloading on change
  binlayout serve --watch ./layouts --port 9090

  # Override settings with environment variables
  BINLAYOUT_LOGGING_LEVEL=DEBUG binlayout serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override server.port")
	serveCmd.Flags().StringVar(&serveWatchDir, "watch", "", "override registry.watch_dir")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := cmdutil.Config()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveWatchDir != "" {
		cfg.Registry.WatchDir = serveWatchDir
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetryShutdown, err := telemetry.Init(ctx, cfg.TracingConfig(Version))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(cfg.ProfilingConfig(Version))
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	// Metrics must be enabled before the store and codecs are instrumented.
	var (
		codecMetrics metrics.CodecMetrics
		storeMetrics metrics.StoreMetrics
	)
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		codecMetrics = promMetrics.NewCodecMetrics()
		storeMetrics = promMetrics.NewStoreMetrics()
		logger.Info("Metrics enabled", "path", cfg.Metrics.Path)
	}

	store, err := config.OpenRegistry(ctx, cfg, storeMetrics)
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("registry close error", logger.Err(err))
		}
	}()
	logger.Info("Registry opened", logger.Store(cfg.Registry.Type))

	watchDone := make(chan struct{})
	if dir := cfg.Registry.WatchDir; dir != "" {
		go func() {
			defer close(watchDone)
			if err := registry.Watch(ctx, store, dir); err != nil {
				logger.Error("layout watcher stopped", logger.File(dir), logger.Err(err))
			}
		}()
	} else {
		close(watchDone)
	}

	tokens, err := cfg.TokenService()
	if err != nil {
		return fmt.Errorf("invalid auth configuration: %w", err)
	}
	if tokens == nil {
		logger.Warn("API authentication disabled", "hint", "set server.auth.jwt_secret to require tokens")
	}

	codecOpts := cfg.CodecOptions()
	if codecMetrics != nil {
		codecOpts = append(codecOpts, codec.WithMetrics(codecMetrics))
	}

	server := api.NewServer(cfg.APIConfig(), api.Deps{
		Store:        store,
		CodecOptions: codecOpts,
		Tokens:       tokens,
	})

	logger.Info("Server is running. Press Ctrl+C to stop.", "port", server.Port())
	err = server.Start(ctx)
	stop()
	<-watchDone
	return err
}
