// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package prefs provides the key-value string store the scheduler persists into.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown prefs backend")

// Store is a string-to-string preference store.
type Store interface {
	// Get returns the value under key; ok is false when the key has never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key, value string) error
	// Close releases the backend.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Backends lists every supported backend name.
var Backends = []string{BackendMemory, BackendFile, BackendSQLite, BackendBadger, BackendRedis}

// Config selects and configures a backend.
type Config struct {
	Backend string
	Dir     string // data directory for file, sqlite and badger
	Redis   RedisConfig
}

// Open creates the Store described by cfg. An empty backend means "file" when a
// directory is set and "memory" otherwise.
func Open(ctx context.Context, cfg Config) (Store, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendMemory
		if cfg.Dir != "" {
			backend = BackendFile
		}
	}

	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		if err := ensureDir(cfg.Dir); err != nil {
			return nil, err
		}
		return NewFileStore(filepath.Join(cfg.Dir, "prefs.yaml"))
	case BackendSQLite:
		if err := ensureDir(cfg.Dir); err != nil {
			return nil, err
		}
		return NewSQLiteStore(filepath.Join(cfg.Dir, "prefs.sqlite"))
	case BackendBadger:
		if err := ensureDir(cfg.Dir); err != nil {
			return nil, err
		}
		return NewBadgerStore(filepath.Join(cfg.Dir, "prefs.badger"))
	case BackendRedis:
		return NewRedisStore(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("%w: %s (supported: memory, file, sqlite, badger, redis)", ErrUnknownBackend, backend)
	}
}

func ensureDir(dir string) error {
	if dir == "" {
		return errors.New("prefs: data directory is required")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("prefs: create data dir: %w", err)
	}
	return nil
}
