// Package tokenstore persists the JWT credential pair and the last known
// session user across restarts. It is the only shared mutable state between
// the API client and the auth session; writes are last-write-wins.
package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Pair holds the access and refresh tokens issued by the backend.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Empty reports whether no credentials are stored.
func (p Pair) Empty() bool {
	return p.Access == "" && p.Refresh == ""
}

// UserSnapshot is the serialized session user written at login and used to
// optimistically restore the session on startup.
type UserSnapshot struct {
	ID        int    `json:"id,omitempty"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type fileState struct {
	Pair Pair          `json:"credentials"`
	User *UserSnapshot `json:"user,omitempty"`
}

// Store reads and writes credentials to a single JSON file. Load never
// fails: a missing or unreadable file reads as empty.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store backed by the given path. The file is created lazily
// on first Save.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the file backing this store.
func (s *Store) Path() string {
	return s.path
}

// Save persists the credential pair, overwriting any existing one. The user
// snapshot, if present, is kept.
func (s *Store) Save(pair Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.read()
	state.Pair = pair
	return s.write(state)
}

// SaveAccess replaces only the access token, as happens after a refresh.
func (s *Store) SaveAccess(access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.read()
	state.Pair.Access = access
	return s.write(state)
}

// SaveUser persists the session user snapshot alongside the credentials.
func (s *Store) SaveUser(user UserSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.read()
	state.User = &user
	return s.write(state)
}

// Load returns the stored pair, or an empty pair if nothing was ever saved.
func (s *Store) Load() Pair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().Pair
}

// LoadUser returns the stored user snapshot, if any.
func (s *Store) LoadUser() (UserSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.read()
	if state.User == nil {
		return UserSnapshot{}, false
	}
	return *state.User, true
}

// Clear removes the credentials and the user snapshot. Idempotent.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("tokenstore: clear: %w", err)
	}
	return nil
}

func (s *Store) read() fileState {
	var state fileState
	data, err := os.ReadFile(s.path)
	if err != nil {
		return state
	}
	// A corrupt file reads as empty; the next Save rewrites it whole.
	_ = json.Unmarshal(data, &state)
	return state
}

func (s *Store) write(state fileState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("tokenstore: ensure dir: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("tokenstore: encode: %w", err)
	}
	// Credentials only readable by the owner.
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("tokenstore: write: %w", err)
	}
	return nil
}
