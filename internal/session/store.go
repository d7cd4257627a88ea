package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNoCredential is returned by Store.Load when nothing is persisted.
var ErrNoCredential = errors.New("session: no stored credential")

// Store persists the raw access token between runs.
type Store interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// IsNoCredential reports whether raw cannot possibly be a usable token:
// empty, a serialized nil sentinel, or lacking the two-dot JWT shape.
// Such values are treated as garbage to be cleared, never parsed.
func IsNoCredential(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	switch trimmed {
	case "", "null", "undefined":
		return true
	}
	return strings.Count(trimmed, ".") != 2
}

// FileStore keeps the token in a single file with owner-only permissions.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoCredential
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token), 0o600)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MemStore is an in-memory Store for tests and ephemeral sessions.
type MemStore struct {
	mu    sync.Mutex
	token string
	set   bool
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

// NewMemStoreWith seeds the store with an existing credential.
func NewMemStoreWith(token string) *MemStore {
	return &MemStore{token: token, set: true}
}

func (s *MemStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return "", ErrNoCredential
	}
	return s.token, nil
}

func (s *MemStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.set = true
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.set = false
	return nil
}
