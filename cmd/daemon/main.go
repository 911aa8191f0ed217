// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/recsched/internal/api"
	"github.com/ManuGH/recsched/internal/config"
	"github.com/ManuGH/recsched/internal/dvr"
	xglog "github.com/ManuGH/recsched/internal/log"
	"github.com/ManuGH/recsched/internal/prefs"
	"github.com/ManuGH/recsched/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

const serviceName = "recsched"

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

// maskURL removes user info from a URL string for safe logging.
func maskURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	parsedURL.User = nil
	return parsedURL.String()
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "import-xmltv":
			os.Exit(runImportCLI(os.Args[2:]))
		case "healthcheck":
			os.Exit(runHealthcheckCLI(os.Args[2:]))
		}
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Configure logger with safe defaults until config is loaded
	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: serviceName,
		Version: version,
	})
	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", *configPath).
			Msg("failed to load configuration")
	}

	if err := serve(ctx, cfg, *configPath); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "daemon.failed").
			Msg("daemon failed")
	}
	logger.Info().Msg("server exiting")
}

// loadConfig loads configuration and re-configures the logger from it.
func loadConfig(path string) (config.AppConfig, error) {
	cfg, err := config.NewLoader(path, version).Load()
	if err != nil {
		return cfg, err
	}
	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Service: serviceName,
		Version: cfg.Version,
	})

	source := "env+defaults"
	if path != "" {
		source = "file"
	}
	logger := xglog.WithComponent("config")
	logger.Info().
		Str("event", "config.loaded").
		Str("source", source).
		Str("path", path).
		Msg("configuration loaded")
	return cfg, nil
}

// openScheduler opens the configured preference store and restores the scheduler from it.
// A failed restore is logged and the scheduler starts empty.
func openScheduler(ctx context.Context, cfg config.AppConfig) (*dvr.Scheduler, prefs.Store, error) {
	store, err := prefs.Open(ctx, cfg.PrefsStoreConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("open prefs store: %w", err)
	}

	policy, err := dvr.ParseConflictPolicy(cfg.Recordings.ConflictPolicy)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	sched := dvr.NewScheduler(store,
		dvr.WithKey(cfg.Prefs.Key),
		dvr.WithExpirePeriod(cfg.Recordings.ExpireHours),
		dvr.WithConflictPolicy(policy),
	)
	if err := sched.Load(ctx); err != nil {
		logger := xglog.WithComponent("daemon")
		logger.Error().
			Err(err).
			Str("event", "recording.load_failed").
			Msg("could not restore recordings, starting empty")
	}
	return sched, store, nil
}

// serve runs the API until ctx is cancelled. Changes to the config file are
// picked up for the log level.
func serve(ctx context.Context, cfg config.AppConfig, configPath string) error {
	logger := xglog.WithComponent("daemon")

	tp, err := telemetry.NewProvider(ctx, cfg.TelemetryProviderConfig(serviceName))
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	sched, store, err := openScheduler(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("prefs store close failed")
		}
	}()

	tracing := ""
	if cfg.Telemetry.Enabled {
		tracing = serviceName
		logger.Info().Msgf("→ Tracing: %s exporter to %s", cfg.Telemetry.Exporter, maskURL(cfg.Telemetry.Endpoint))
	}
	logger.Info().
		Str("event", "startup").
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Str("addr", cfg.ListenAddr).
		Str(xglog.FieldBackend, cfg.PrefsStoreConfig().Backend).
		Int("records", len(sched.Records())).
		Msg("starting recsched")

	srv := api.NewServer(sched, api.Config{
		ServiceName: tracing,
		RateLimit:   cfg.API.RateLimit,
		Version:     cfg.Version,
	})

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
	}

	holder := config.NewHolder(cfg, config.NewLoader(configPath, version))
	holder.OnReload(func(old, updated config.AppConfig) {
		if old.LogLevel == updated.LogLevel {
			return
		}
		xglog.Configure(xglog.Config{
			Level:   updated.LogLevel,
			Service: serviceName,
			Version: updated.Version,
		})
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, ln)
	})
	g.Go(func() error {
		return holder.Watch(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Str("event", "shutdown").Msg("shutdown signal received")
		return nil
	})
	return g.Wait()
}
