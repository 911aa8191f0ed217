// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"

	"github.com/ManuGH/recsched/internal/dvr"
	"github.com/ManuGH/recsched/internal/metrics"
	"github.com/ManuGH/recsched/internal/prefs"
	"github.com/ManuGH/recsched/internal/validate"
)

// Validate validates an AppConfig using the centralized validation package.
// Failures wrap ErrInvalidConfig.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.HostPort("ListenAddr", cfg.ListenAddr, true)
	v.LogLevel("LogLevel", cfg.LogLevel)

	v.OneOf("Prefs.Backend", cfg.Prefs.Backend, prefs.Backends)
	v.NotEmpty("Prefs.Key", cfg.Prefs.Key)
	switch cfg.Prefs.Backend {
	case prefs.BackendFile, prefs.BackendSQLite, prefs.BackendBadger:
		v.Directory("DataDir", cfg.DataDir, false)
	case prefs.BackendRedis:
		v.HostPort("Prefs.Redis.Addr", cfg.Prefs.Redis.Addr, false)
		v.Range("Prefs.Redis.DB", cfg.Prefs.Redis.DB, 0, 15)
	}

	v.Positive("Recordings.ExpireHours", cfg.Recordings.ExpireHours)
	if _, err := dvr.ParseConflictPolicy(cfg.Recordings.ConflictPolicy); err != nil {
		v.AddError("Recordings.ConflictPolicy", err.Error(), cfg.Recordings.ConflictPolicy)
	}

	if cfg.Telemetry.Enabled {
		v.OneOf("Telemetry.Exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("Telemetry.Endpoint", cfg.Telemetry.Endpoint)
	}
	v.FloatRange("Telemetry.SamplingRate", cfg.Telemetry.SamplingRate, 0, 1)

	v.NonNegative("API.RateLimit", cfg.API.RateLimit)

	if err := v.Err(); err != nil {
		metrics.IncConfigValidationError()
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
