// Package mock provides mock implementations of storage interfaces for testing.
package mock

import (
	"context"
	"sync"

	"github.com/giantswarm/oauthapp/storage"
)

// Compile-time interface check
var _ storage.Store = (*MockStore)(nil)

// MockStore is a map-backed storage.Store whose methods can be overridden.
// Expiry is not enforced.
type MockStore struct {
	mu       sync.Mutex
	sessions map[string]storage.Session
	states   map[string]storage.AuthorizationState

	SaveSessionFunc  func(ctx context.Context, s *storage.Session) error
	GetSessionFunc   func(ctx context.Context, id string) (*storage.Session, error)
	SaveStateFunc    func(ctx context.Context, st *storage.AuthorizationState) error
	ConsumeStateFunc func(ctx context.Context, state string) (*storage.AuthorizationState, error)

	CallCounts map[string]int
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		sessions:   make(map[string]storage.Session),
		states:     make(map[string]storage.AuthorizationState),
		CallCounts: make(map[string]int),
	}
}

func (m *MockStore) count(method string) {
	m.mu.Lock()
	m.CallCounts[method]++
	m.mu.Unlock()
}

// SaveSession saves a session
func (m *MockStore) SaveSession(ctx context.Context, s *storage.Session) error {
	m.count("SaveSession")
	if m.SaveSessionFunc != nil {
		return m.SaveSessionFunc(ctx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

// GetSession retrieves a session
func (m *MockStore) GetSession(ctx context.Context, id string) (*storage.Session, error) {
	m.count("GetSession")
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, storage.ErrSessionNotFound
	}
	return &s, nil
}

// DeleteSession removes a session
func (m *MockStore) DeleteSession(_ context.Context, id string) error {
	m.count("DeleteSession")
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// SaveState saves an authorization state
func (m *MockStore) SaveState(ctx context.Context, st *storage.AuthorizationState) error {
	m.count("SaveState")
	if m.SaveStateFunc != nil {
		return m.SaveStateFunc(ctx, st)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[st.State] = *st
	return nil
}

// ConsumeState returns and removes an authorization state
func (m *MockStore) ConsumeState(ctx context.Context, state string) (*storage.AuthorizationState, error) {
	m.count("ConsumeState")
	if m.ConsumeStateFunc != nil {
		return m.ConsumeStateFunc(ctx, state)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[state]
	if !ok {
		return nil, storage.ErrStateNotFound
	}
	delete(m.states, state)
	return &st, nil
}

// Sessions returns a snapshot of the stored sessions.
func (m *MockStore) Sessions() []storage.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]storage.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// GetCallCount returns the number of times a method was called
func (m *MockStore) GetCallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCounts[method]
}
