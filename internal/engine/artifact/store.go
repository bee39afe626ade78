// Package artifact holds the in-memory map from structural keys to cache entries.
package artifact

import (
	"sync"

	"go.trai.ch/shade/internal/core/domain"
)

// Store maps keys to cache entries. One Store exists per stage.
//
// The mutex covers only the map lookup and insert. Entry state transitions happen on the entry
// itself and never under the store lock.
type Store[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*domain.Entry
	created int64
}

// NewStore creates an empty store.
func NewStore[K comparable]() *Store[K] {
	return &Store[K]{entries: make(map[K]*domain.Entry)}
}

// GetOrCreate returns the entry for k, inserting an empty one if none exists.
func (s *Store[K]) GetOrCreate(k K) *domain.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[k]; ok {
		return e
	}
	e := &domain.Entry{}
	s.entries[k] = e
	s.created++
	return e
}

// MarkIssued claims the right to submit a compile for e.
// Only the caller that receives true may submit.
func (s *Store[K]) MarkIssued(e *domain.Entry) bool {
	return e.MarkIssued()
}

// Lookup returns the entry for k without inserting.
func (s *Store[K]) Lookup(k K) (*domain.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[k]
	return e, ok
}

// Install stores a ready artifact for k with the issued state already set, as done when
// replaying the persistent mirror. Later records replace earlier ones for the same key.
// It reports whether k was new, so that duplicates are counted once.
//
// It must not be called once entries of the store have been handed out.
func (s *Store[K]) Install(k K, bytecode []byte) bool {
	e := s.GetOrCreate(k)
	e.MarkIssued()
	return !e.Replace(bytecode)
}

// Len returns the number of live entries.
func (s *Store[K]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Created returns the number of entries inserted since the store was created.
func (s *Store[K]) Created() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}

// Keys returns a snapshot of every key in the store, in no particular order.
func (s *Store[K]) Keys() []K {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]K, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

// Clear drops every entry. Entries already handed out stay valid for their holders.
func (s *Store[K]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
}
