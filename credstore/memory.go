package credstore

import "sync"

// MemoryStore is a process-local [Store]. It is the default store wired by
// the client builder and the reference implementation for the atomicity
// contract.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	user  *UserRecord
	set   bool
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

// SetSession describes the setsession operation and its observable behavior.
func (s *MemoryStore) SetSession(token string, user *UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.user = cloneUser(user)
	s.set = true
	return nil
}

// Token describes the token operation and its observable behavior.
func (s *MemoryStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.set {
		return "", false
	}
	return s.token, true
}

// User describes the user operation and its observable behavior.
func (s *MemoryStore) User() (*UserRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.set || s.user == nil {
		return nil, false
	}
	return cloneUser(s.user), true
}

// Clear describes the clear operation and its observable behavior.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = nil
	s.set = false
	return nil
}
