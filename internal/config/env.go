// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/ManuGH/recsched/internal/log"
	"github.com/rs/zerolog"
)

// Environment variables read by the Loader.
const (
	EnvDataDir          = "RECSCHED_DATA"
	EnvListenAddr       = "RECSCHED_LISTEN"
	EnvLogLevel         = "RECSCHED_LOG_LEVEL"
	EnvPrefsBackend     = "RECSCHED_PREFS_BACKEND"
	EnvPrefsKey         = "RECSCHED_PREFS_KEY"
	EnvRedisAddr        = "RECSCHED_REDIS_ADDR"
	EnvRedisPassword    = "RECSCHED_REDIS_PASSWORD"
	EnvRedisDB          = "RECSCHED_REDIS_DB"
	EnvExpireHours      = "RECSCHED_EXPIRE_HOURS"
	EnvConflictPolicy   = "RECSCHED_CONFLICT_POLICY"
	EnvTelemetryEnabled = "RECSCHED_TELEMETRY_ENABLED"
	EnvTelemetryExport  = "RECSCHED_TELEMETRY_EXPORTER"
	EnvOTLPEndpoint     = "RECSCHED_OTLP_ENDPOINT"
	EnvSamplingRate     = "RECSCHED_SAMPLING_RATE"
	EnvRateLimit        = "RECSCHED_RATE_LIMIT"
)

// ParseString reads a string from environment variable or returns default value.
// It logs the source (environment or default) for observability.
func ParseString(key, defaultValue string) string {
	return parseStringWithLogger(log.WithComponent("config"), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		lowerKey := strings.ToLower(key)
		switch {
		case value == "":
			logger.Debug().
				Str("key", key).
				Str("default", defaultValue).
				Str("source", "default").
				Msg("using default value (environment variable is empty)")
			return defaultValue
		case strings.Contains(lowerKey, "token") || strings.Contains(lowerKey, "password"):
			// For sensitive vars, just log that it was set
			logger.Debug().
				Str("key", key).
				Str("source", "environment").
				Bool("sensitive", true).
				Msg("using environment variable")
		default:
			logger.Debug().
				Str("key", key).
				Str("value", value).
				Str("source", "environment").
				Msg("using environment variable")
		}
		return value
	}
	logger.Debug().
		Str("key", key).
		Str("default", defaultValue).
		Str("source", "default").
		Msg("using default value")
	return defaultValue
}

// parseEnv looks key up and converts it with parse. Empty or unparsable values
// yield defaultValue; the latter logs a warning naming kind.
func parseEnv[T any](key, kind string, defaultValue T, parse func(string) (T, error)) T {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logger.Debug().
			Str("key", key).
			Interface("default", defaultValue).
			Str("source", "default").
			Msg("using default value")
		return defaultValue
	}
	parsed, err := parse(v)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Interface("default", defaultValue).
			Msgf("invalid %s in environment variable, using default", kind)
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Interface("value", parsed).
		Str("source", "environment").
		Msg("using environment variable")
	return parsed
}

// ParseInt reads an integer from environment variable or returns default value.
// It validates the input and falls back to default on parse errors.
func ParseInt(key string, defaultValue int) int {
	return parseEnv(key, "integer", defaultValue, strconv.Atoi)
}

// ParseFloat reads a float64 from environment variable or returns default value.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseEnv(key, "float", defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ParseBool reads a boolean from environment variable or returns default value.
// It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	return parseEnv(key, "boolean", defaultValue, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		default:
			return false, strconv.ErrSyntax
		}
	})
}
