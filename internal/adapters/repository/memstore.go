package repository

import (
	"context"
	"sync"

	"github.com/okian/jokenpo/internal/domain/model"
)

// MemoryStore is an in-process Store, used by the simulator and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []model.Entry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save appends an entry.
func (s *MemoryStore) Save(_ context.Context, name string, score int) error {
	name, err := ValidateName(name)
	if err != nil {
		return err
	}
	if err := validateScore(score); err != nil {
		return err
	}
	s.mu.Lock()
	s.entries = append(s.entries, model.Entry{Name: name, Score: score})
	s.mu.Unlock()
	return nil
}

// TopN ranks a copy of the stored entries.
func (s *MemoryStore) TopN(_ context.Context, n int) ([]model.Entry, error) {
	s.mu.RLock()
	out := make([]model.Entry, len(s.entries))
	copy(out, s.entries)
	s.mu.RUnlock()
	return limit(model.Rank(out), n), nil
}

// Count returns the number of entries.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
