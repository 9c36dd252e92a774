package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/connectsphere/clientkit/pkg/logger"
)

// FileStore persists the whole key space as a single JSON file. Every
// mutation rewrites the file through a temp-file rename, so readers never
// observe a partially written state.
//
// A missing or unparseable file is treated as an empty store: client
// storage must never be the reason the application fails to start.
type FileStore struct {
	path   string
	mu     sync.RWMutex
	values map[string]string
	logger *slog.Logger
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithFileStoreLogger sets the logger used to report corrupt-state recovery.
func WithFileStoreLogger(log *slog.Logger) FileStoreOption {
	return func(s *FileStore) {
		if log != nil {
			s.logger = log
		}
	}
}

// NewFileStore opens (or creates) the store backed by path. The parent
// directory is created if needed. Prior contents are loaded eagerly.
func NewFileStore(path string, opts ...FileStoreOption) (*FileStore, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil, ErrInvalidPath
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("kvstore: create directory %q: %w", dir, err)
		}
	}

	s := &FileStore{
		path:   path,
		values: make(map[string]string),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.load()
	return s, nil
}

// load reads prior state from disk. Corrupt or missing files leave the
// store empty rather than failing.
func (s *FileStore) load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read client storage, starting empty",
				logger.Component("kvstore"),
				slog.String("path", s.path),
				logger.Error(err),
			)
		}
		return
	}

	values := make(map[string]string)
	if err := json.Unmarshal(raw, &values); err != nil {
		s.logger.Warn("client storage is corrupt, starting empty",
			logger.Component("kvstore"),
			slog.String("path", s.path),
			logger.Error(err),
		)
		return
	}
	s.values = values
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	s.values[key] = value
	if err := s.flush(); err != nil {
		// Roll back the in-memory map so memory and disk agree.
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return errors.Join(ErrFailedToWrite, err)
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	if !had {
		return nil
	}
	delete(s.values, key)
	if err := s.flush(); err != nil {
		s.values[key] = prev
		return errors.Join(ErrFailedToDelete, err)
	}
	return nil
}

// flush writes the full key space atomically. Callers must hold the write lock.
func (s *FileStore) flush() error {
	raw, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
