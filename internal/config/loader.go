// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/recsched/internal/dvr"
	"github.com/ManuGH/recsched/internal/prefs"
	"gopkg.in/yaml.v3"
)

// Defaults applied before the file and environment layers.
const (
	DefaultDataDir      = "/var/lib/recsched"
	DefaultListenAddr   = ":8080"
	DefaultLogLevel     = "info"
	DefaultExporter     = "grpc"
	DefaultOTLPEndpoint = "localhost:4317"
	DefaultRateLimit    = 120
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // Mechanical tracking of consumed keys
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults
// It enforces Strict Validated Order: Parse File (Strict) -> Apply Env -> Validate
func (l *Loader) Load() (AppConfig, error) {
	cfg := defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeFileConfig(&cfg, fileCfg)
	}

	l.mergeEnvConfig(&cfg)

	// SAFETY: Ensure DataDir is absolute to prevent path traversal/platform errors
	if cfg.DataDir != "" {
		if abs, err := filepath.Abs(cfg.DataDir); err == nil {
			cfg.DataDir = abs
		}
	}

	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func defaults() AppConfig {
	return AppConfig{
		DataDir:    DefaultDataDir,
		ListenAddr: DefaultListenAddr,
		LogLevel:   DefaultLogLevel,
		Prefs: PrefsConfig{
			Backend: prefs.BackendFile,
			Key:     dvr.DefaultKey,
		},
		Recordings: RecordingsConfig{
			ExpireHours:    dvr.DefaultExpirePeriodHours,
			ConflictPolicy: dvr.ConflictReject.String(),
		},
		Telemetry: TelemetryConfig{
			Exporter:     DefaultExporter,
			Endpoint:     DefaultOTLPEndpoint,
			SamplingRate: 1.0,
		},
		API: APIConfig{RateLimit: DefaultRateLimit},
	}
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// path is cleaned and originates from the command line
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

func mergeFileConfig(dst *AppConfig, src *FileConfig) {
	setString(&dst.DataDir, src.DataDir)
	setString(&dst.ListenAddr, src.ListenAddr)
	setString(&dst.LogLevel, src.LogLevel)

	setString(&dst.Prefs.Backend, src.Prefs.Backend)
	setString(&dst.Prefs.Key, src.Prefs.Key)
	setString(&dst.Prefs.Redis.Addr, src.Prefs.Redis.Addr)
	setString(&dst.Prefs.Redis.Password, src.Prefs.Redis.Password)
	setPtr(&dst.Prefs.Redis.DB, src.Prefs.Redis.DB)

	setPtr(&dst.Recordings.ExpireHours, src.Recordings.ExpireHours)
	setString(&dst.Recordings.ConflictPolicy, src.Recordings.ConflictPolicy)

	setPtr(&dst.Telemetry.Enabled, src.Telemetry.Enabled)
	setString(&dst.Telemetry.Exporter, src.Telemetry.Exporter)
	setString(&dst.Telemetry.Endpoint, src.Telemetry.Endpoint)
	setPtr(&dst.Telemetry.SamplingRate, src.Telemetry.SamplingRate)

	setPtr(&dst.API.RateLimit, src.API.RateLimit)
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.DataDir = l.envString(EnvDataDir, cfg.DataDir)
	cfg.ListenAddr = l.envString(EnvListenAddr, cfg.ListenAddr)
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)

	cfg.Prefs.Backend = l.envString(EnvPrefsBackend, cfg.Prefs.Backend)
	cfg.Prefs.Key = l.envString(EnvPrefsKey, cfg.Prefs.Key)
	cfg.Prefs.Redis.Addr = l.envString(EnvRedisAddr, cfg.Prefs.Redis.Addr)
	cfg.Prefs.Redis.Password = l.envString(EnvRedisPassword, cfg.Prefs.Redis.Password)
	cfg.Prefs.Redis.DB = l.envInt(EnvRedisDB, cfg.Prefs.Redis.DB)

	cfg.Recordings.ExpireHours = l.envInt(EnvExpireHours, cfg.Recordings.ExpireHours)
	cfg.Recordings.ConflictPolicy = l.envString(EnvConflictPolicy, cfg.Recordings.ConflictPolicy)

	cfg.Telemetry.Enabled = l.envBool(EnvTelemetryEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvTelemetryExport, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvOTLPEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvSamplingRate, cfg.Telemetry.SamplingRate)

	cfg.API.RateLimit = l.envInt(EnvRateLimit, cfg.API.RateLimit)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setPtr[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
