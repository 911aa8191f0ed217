// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolder_Reload(t *testing.T) {
	path := writeConfig(t, "logLevel: info\n")
	loader := NewLoader(path, "dev")
	initial, err := loader.Load()
	require.NoError(t, err)

	h := NewHolder(initial, loader)
	var gotOld, gotNew string
	h.OnReload(func(old, updated AppConfig) {
		gotOld, gotNew = old.LogLevel, updated.LogLevel
	})

	require.NoError(t, os.WriteFile(path, []byte("logLevel: debug\n"), 0600))
	require.NoError(t, h.Reload())
	assert.Equal(t, "debug", h.Get().LogLevel)
	assert.Equal(t, "info", gotOld)
	assert.Equal(t, "debug", gotNew)
}

func TestHolder_ReloadKeepsPreviousOnError(t *testing.T) {
	path := writeConfig(t, "logLevel: warn\n")
	loader := NewLoader(path, "dev")
	initial, err := loader.Load()
	require.NoError(t, err)

	h := NewHolder(initial, loader)
	called := false
	h.OnReload(func(AppConfig, AppConfig) { called = true })

	require.NoError(t, os.WriteFile(path, []byte("recordings:\n  expireHours: 0\n"), 0600))
	err = h.Reload()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, "warn", h.Get().LogLevel)
	assert.False(t, called)

	require.NoError(t, os.WriteFile(path, []byte("bogus: true\n"), 0600))
	require.ErrorIs(t, h.Reload(), ErrUnknownConfigField)
	assert.Equal(t, "warn", h.Get().LogLevel)
}

func TestHolder_WatchWithoutFile(t *testing.T) {
	h := NewHolder(defaults(), NewLoader("", "dev"))
	assert.NoError(t, h.Watch(context.Background()))
}

func TestHolder_WatchReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "logLevel: info\n")
	loader := NewLoader(path, "dev")
	initial, err := loader.Load()
	require.NoError(t, err)

	h := NewHolder(initial, loader)
	var reloads atomic.Int32
	h.OnReload(func(AppConfig, AppConfig) { reloads.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Watch(ctx) }()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("logLevel: error\n"), 0600))

	require.Eventually(t, func() bool { return reloads.Load() > 0 }, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, "error", h.Get().LogLevel)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
