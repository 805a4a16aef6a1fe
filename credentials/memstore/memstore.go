// Package memstore provides an in-memory credential store. It backs the
// console when durable storage is unavailable (the session then lives only
// for the current process) and serves as the store fake in tests.
package memstore

import (
	"sync"

	"github.com/veridocs/go-kyc-console/credentials"
)

// Store is an in-memory implementation of credentials.Store.
type Store struct {
	mu     sync.RWMutex
	record credentials.Record
	saved  bool
}

var _ credentials.Store = (*Store)(nil)

// New creates a new empty in-memory store.
func New() *Store {
	return &Store{}
}

// Save stores a copy of the record.
func (s *Store) Save(record credentials.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.User = record.User.Clone()
	s.record = record
	s.saved = true
	return nil
}

// Load returns a copy of the last-saved record, or an empty record.
func (s *Store) Load() (credentials.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return credentials.Record{}, nil
	}
	record := s.record
	record.User = record.User.Clone()
	return record, nil
}

// Clear removes the stored record. Idempotent.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = credentials.Record{}
	s.saved = false
	return nil
}
