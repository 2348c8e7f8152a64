package storage

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// FileStorage is a fiber.Storage keeping one JSON file per key. It backs the
// dashboard login sessions so they survive a restart.
type FileStorage struct {
	dir string
	mu  sync.RWMutex
	now func() time.Time
}

type fileEntry struct {
	Value   []byte    `json:"value"`
	Expires time.Time `json:"expires"`
}

// NewFileStorage creates the directory if needed
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrap(err, "failed to create session directory")
	}
	return &FileStorage{dir: dir, now: time.Now}, nil
}

// path hex-encodes the key so it can never escape dir
func (s *FileStorage) path(key string) string {
	return filepath.Join(s.dir, hex.EncodeToString([]byte(key))+".json")
}

// Get returns nil, nil for a missing or expired key
func (s *FileStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	s.mu.RLock()
	data, err := os.ReadFile(s.path(key))
	s.mu.RUnlock()
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read session")
	}

	var e fileEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	if !e.Expires.IsZero() && s.now().After(e.Expires) {
		s.Delete(key)
		return nil, nil
	}
	return e.Value, nil
}

// Set stores val; exp of zero means no expiry
func (s *FileStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	e := fileEntry{Value: val}
	if exp > 0 {
		e.Expires = s.now().Add(exp)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return errors.Wrap(err, "write session")
	}
	return errors.Wrap(os.Rename(tmp, s.path(key)), "write session")
}

func (s *FileStorage) Delete(key string) error {
	if key == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "delete session")
	}
	return nil
}

// Reset removes every stored session
func (s *FileStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return errors.Wrap(err, "list sessions")
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return errors.Wrap(err, "delete session")
		}
	}
	return nil
}

func (s *FileStorage) Close() error {
	return nil
}
