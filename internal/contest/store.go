package contest

import (
	"context"
	"sync"
	"time"
)

// Store keeps live contest states by id
type Store interface {
	Get(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, s *State) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps contests in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	contests map[string]memoryEntry
	ttl      time.Duration
}

type memoryEntry struct {
	state     *State
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory store. A zero ttl never expires entries.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{contests: make(map[string]memoryEntry), ttl: ttl}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*State, error) {
	m.mu.RLock()
	entry, ok := m.contests[id]
	m.mu.RUnlock()

	if !ok || (!entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)) {
		return nil, ErrNotFound
	}
	return entry.state.clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, s *State) error {
	entry := memoryEntry{state: s.clone()}
	if m.ttl > 0 {
		entry.expiresAt = time.Now().Add(m.ttl)
	}

	m.mu.Lock()
	m.contests[s.ID] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.contests[id]; !ok {
		return ErrNotFound
	}
	delete(m.contests, id)
	return nil
}

// CleanupExpired drops expired contests and returns how many were removed
func (m *MemoryStore) CleanupExpired() int {
	now := time.Now()
	removed := 0

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, entry := range m.contests {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(m.contests, id)
			removed++
		}
	}
	return removed
}
