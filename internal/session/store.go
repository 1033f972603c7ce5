// internal/session/store.go
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Persister keeps a session between process runs.
type Persister interface {
	Load() (State, error)
	Save(State) error
	Clear() error
}

// FileStore persists the session as a JSON file readable only by its owner.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath is <user config dir>/sales-ledger/session.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "sales-ledger", "session.json"), nil
}

func (f *FileStore) Path() string {
	return f.path
}

// Load returns an empty state when no session file exists.
func (f *FileStore) Load() (State, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to read session: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("failed to decode session %s: %w", f.path, err)
	}
	return state, nil
}

func (f *FileStore) Save(state State) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// MemoryStore keeps the session in memory only.
type MemoryStore struct {
	state State
}

func (m *MemoryStore) Load() (State, error) { return m.state, nil }
func (m *MemoryStore) Save(s State) error   { m.state = s; return nil }
func (m *MemoryStore) Clear() error         { m.state = State{}; return nil }
