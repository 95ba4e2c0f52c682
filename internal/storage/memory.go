package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process [Store] for tests and ephemeral runs.
// Credentials are lost when the process exits.
type MemoryStore struct {
	mu  sync.RWMutex
	rec *Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the held record, or [ErrNotFound] when empty.
func (s *MemoryStore) Load(ctx context.Context) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rec == nil {
		return nil, ErrNotFound
	}

	rec := *s.rec
	return &rec, nil
}

// Save replaces the held record with a copy of rec.
func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.rec = &cp
	return nil
}
