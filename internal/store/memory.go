package store

import (
	"context"
	"sync"
	"time"

	"divenludo/internal/game"
)

// MemoryStore is a thread-safe in-memory Store. It backs tests and
// development runs where durability is not needed.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]game.SessionJSON
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]game.SessionJSON)}
}

// Save stores a snapshot of the session.
func (m *MemoryStore) Save(_ context.Context, s *game.Session) error {
	snapshot := s.ToJSON()
	m.mu.Lock()
	m.sessions[snapshot.ID] = snapshot
	m.mu.Unlock()
	return nil
}

// Get reconstructs a session from its stored snapshot.
func (m *MemoryStore) Get(_ context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	snapshot, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || !validSession(snapshot) {
		return nil, ErrNotFound
	}
	return game.FromJSON(snapshot), nil
}

// ListGuesses returns the stored guess records in submission order.
func (m *MemoryStore) ListGuesses(_ context.Context, id string) ([]game.GuessRecord, error) {
	m.mu.RLock()
	snapshot, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return append([]game.GuessRecord(nil), snapshot.Records...), nil
}

// Delete removes a session.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// CleanupExpired removes sessions whose last update is older than maxAge.
func (m *MemoryStore) CleanupExpired(_ context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, snapshot := range m.sessions {
		if snapshot.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}
