// Package memstore provides an in-memory implementation of triage.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/Adityad84/neural-track/internal/triage"
)

// Store holds triaged records in memory. Suitable for dev/testing.
type Store struct {
	mu      sync.RWMutex
	records map[string]*triage.Record // record ID -> record
	order   []string                  // insertion order, oldest first
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		records: make(map[string]*triage.Record),
	}
}

// Insert stores a copy of the record.
func (s *Store) Insert(_ context.Context, r *triage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.records[r.ID] = &cp
	s.order = append(s.order, r.ID)
	return nil
}

// Get retrieves a record by its ID. Returns a copy.
func (s *Store) Get(_ context.Context, id string) (*triage.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return nil, false, nil
	}
	cp := *r
	return &cp, true, nil
}

// List returns records newest-first with skip/limit pagination. Insertion
// order stands in for created_at ordering; both are monotonic here.
func (s *Store) List(_ context.Context, skip, limit int) ([]*triage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*triage.Record, 0, limit)
	for i := len(s.order) - 1 - skip; i >= 0 && len(out) < limit; i-- {
		cp := *s.records[s.order[i]]
		out = append(out, &cp)
	}
	return out, nil
}
