package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// sessionFile is the on-disk layout. The fixed field names are the durable
// "keys" the session survives process restarts under.
type sessionFile struct {
	Token   string      `json:"token"`
	User    *UserRecord `json:"user,omitempty"`
	SavedAt time.Time   `json:"saved_at"`
}

// FileStore is a [Store] backed by a single JSON document on disk. Writes
// go through a temp file and rename in the same directory, so a crash never
// leaves a half-written session; the file is created with mode 0600.
type FileStore struct {
	mu   sync.Mutex
	path string

	// cached copy of the persisted state; reads never touch the disk
	// after New.
	token string
	user  *UserRecord
	set   bool
}

// NewFile opens (or initializes) a FileStore at path. An existing session
// file is loaded; a missing one means an empty store. A corrupt file is an
// error so a broken session is never silently treated as logged out.
func NewFile(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("credstore: read session file: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("credstore: decode session file: %w", err)
	}

	s.token = f.Token
	s.user = f.User
	s.set = f.Token != ""
	return s, nil
}

// SetSession describes the setsession operation and its observable behavior.
func (s *FileStore) SetSession(token string, user *UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeLocked(sessionFile{
		Token:   token,
		User:    cloneUser(user),
		SavedAt: time.Now(),
	}); err != nil {
		return err
	}

	s.token = token
	s.user = cloneUser(user)
	s.set = true
	return nil
}

// Token describes the token operation and its observable behavior.
func (s *FileStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.set {
		return "", false
	}
	return s.token, true
}

// User describes the user operation and its observable behavior.
func (s *FileStore) User() (*UserRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.set || s.user == nil {
		return nil, false
	}
	return cloneUser(s.user), true
}

// Clear describes the clear operation and its observable behavior.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("credstore: remove session file: %w", err)
	}

	s.token = ""
	s.user = nil
	s.set = false
	return nil
}

func (s *FileStore) writeLocked(f sessionFile) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("credstore: encode session file: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("credstore: create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("credstore: chmod session file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("credstore: write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("credstore: close session file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("credstore: replace session file: %w", err)
	}
	return nil
}
