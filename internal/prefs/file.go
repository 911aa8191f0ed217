// SPDX-License-Identifier: MIT

package prefs

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	xglog "github.com/ManuGH/recsched/internal/log"
	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// FileStore keeps all preferences in one YAML document, rewritten atomically on every Put.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

// NewFileStore opens the YAML file at path. A missing file is an empty store.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, values: make(map[string]string)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(filepath.Clean(s.path))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read prefs file: %w", err)
	}
	var values map[string]string
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse prefs file %s: %w", s.path, err)
	}
	if values != nil {
		s.values = values
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Put rewrites the file with key updated. The in-memory map changes only after the write succeeds.
func (s *FileStore) Put(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.values)
	next[key] = value
	if err := s.write(ctx, next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *FileStore) write(ctx context.Context, values map[string]string) error {
	logger := xglog.FromContext(ctx)

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}

	// renameio handles: temp file creation, fsync, atomic rename, cleanup on error
	pendingFile, err := renameio.NewPendingFile(s.path, renameio.WithPermissions(0600))
	if err != nil {
		return fmt.Errorf("create pending prefs file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending prefs file")
		}
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write prefs data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace prefs file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
