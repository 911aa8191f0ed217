// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	xglog "github.com/ManuGH/recsched/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const reloadDebounce = 500 * time.Millisecond

// Holder holds the active configuration and swaps it on reload.
type Holder struct {
	mu        sync.RWMutex
	current   AppConfig
	loader    *Loader
	logger    zerolog.Logger
	listeners []func(old, updated AppConfig)
}

// NewHolder creates a holder with the initial configuration.
func NewHolder(initial AppConfig, loader *Loader) *Holder {
	return &Holder{
		current: initial,
		loader:  loader,
		logger:  xglog.WithComponent("config"),
	}
}

// Get returns the current configuration.
func (h *Holder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// OnReload registers fn to run after every successful reload.
func (h *Holder) OnReload(fn func(old, updated AppConfig)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

// Reload loads and validates the configuration again. On failure the
// current configuration is kept.
func (h *Holder) Reload() error {
	updated, err := h.loader.Load()
	if err != nil {
		h.logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "config.reload_failed").
			Msg("keeping previous configuration")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	old := h.current
	h.current = updated
	listeners := append([]func(old, updated AppConfig){}, h.listeners...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(old, updated)
	}
	h.logChanges(old, updated)
	return nil
}

// Watch reloads whenever the config file changes until ctx is done.
// Without a config file it returns immediately.
func (h *Holder) Watch(ctx context.Context) error {
	path := h.loader.configPath
	if path == "" {
		h.logger.Info().
			Str(xglog.FieldEvent, "config.watcher_disabled").
			Msg("config file watcher disabled (using ENV-only configuration)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch config file: %w", err)
	}
	h.logger.Info().
		Str(xglog.FieldEvent, "config.watcher_started").
		Str(xglog.FieldPath, path).
		Msg("watching config file for changes")

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors either write in place or replace the file.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() { _ = h.Reload() })
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			h.logger.Error().
				Err(err).
				Str(xglog.FieldEvent, "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// logChanges reports fields that changed. Only the log level is applied live;
// everything else needs a restart.
func (h *Holder) logChanges(old, updated AppConfig) {
	ev := h.logger.Info().Str(xglog.FieldEvent, "config.reloaded")
	if old.LogLevel != updated.LogLevel {
		ev = ev.Str("log_level", updated.LogLevel)
	}
	restart := old.ListenAddr != updated.ListenAddr ||
		old.DataDir != updated.DataDir ||
		old.Prefs != updated.Prefs ||
		old.Recordings != updated.Recordings ||
		old.Telemetry != updated.Telemetry ||
		old.API != updated.API
	ev.Bool("restart_required", restart).Msg("configuration reloaded")
}
