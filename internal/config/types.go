// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads the recsched daemon configuration.
package config

import (
	"github.com/ManuGH/recsched/internal/prefs"
	"github.com/ManuGH/recsched/internal/telemetry"
)

// AppConfig is the effective runtime configuration.
type AppConfig struct {
	Version    string
	DataDir    string
	ListenAddr string
	LogLevel   string

	Prefs      PrefsConfig
	Recordings RecordingsConfig
	Telemetry  TelemetryConfig
	API        APIConfig
}

// PrefsConfig selects the preference store backend.
type PrefsConfig struct {
	Backend string
	Key     string
	Redis   RedisConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RecordingsConfig tunes the recording scheduler.
type RecordingsConfig struct {
	ExpireHours    int
	ConflictPolicy string
}

type TelemetryConfig struct {
	Enabled      bool
	Exporter     string
	Endpoint     string
	SamplingRate float64
}

type APIConfig struct {
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int
}

// PrefsStoreConfig maps the configuration onto prefs.Open parameters.
func (c AppConfig) PrefsStoreConfig() prefs.Config {
	return prefs.Config{
		Backend: c.Prefs.Backend,
		Dir:     c.DataDir,
		Redis: prefs.RedisConfig{
			Addr:     c.Prefs.Redis.Addr,
			Password: c.Prefs.Redis.Password,
			DB:       c.Prefs.Redis.DB,
		},
	}
}

// TelemetryProviderConfig maps the configuration onto telemetry.NewProvider parameters.
func (c AppConfig) TelemetryProviderConfig(service string) telemetry.Config {
	return telemetry.Config{
		Enabled:        c.Telemetry.Enabled,
		ServiceName:    service,
		ServiceVersion: c.Version,
		ExporterType:   c.Telemetry.Exporter,
		Endpoint:       c.Telemetry.Endpoint,
		SamplingRate:   c.Telemetry.SamplingRate,
	}
}

// FileConfig mirrors the YAML file. Pointer fields distinguish "unset" from zero values.
type FileConfig struct {
	DataDir    string `yaml:"dataDir,omitempty"`
	ListenAddr string `yaml:"listenAddr,omitempty"`
	LogLevel   string `yaml:"logLevel,omitempty"`

	Prefs      FilePrefs      `yaml:"prefs,omitempty"`
	Recordings FileRecordings `yaml:"recordings,omitempty"`
	Telemetry  FileTelemetry  `yaml:"telemetry,omitempty"`
	API        FileAPI        `yaml:"api,omitempty"`
}

type FilePrefs struct {
	Backend string    `yaml:"backend,omitempty"`
	Key     string    `yaml:"key,omitempty"`
	Redis   FileRedis `yaml:"redis,omitempty"`
}

type FileRedis struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       *int   `yaml:"db,omitempty"`
}

type FileRecordings struct {
	ExpireHours    *int   `yaml:"expireHours,omitempty"`
	ConflictPolicy string `yaml:"conflictPolicy,omitempty"`
}

type FileTelemetry struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
}

type FileAPI struct {
	RateLimit *int `yaml:"rateLimit,omitempty"`
}
