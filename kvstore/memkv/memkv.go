/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package memkv provides an in-memory KVStore implementation for testing
package memkv

import (
	"sync"

	"github.com/suparena/draftstore/kvstore"
)

// Store is an in-memory implementation of kvstore.KVStore with a
// configurable byte limit and failure injection for exercising quota and
// security paths.
type Store struct {
	mu          sync.RWMutex
	data        map[string]string
	limit       int64
	used        int64
	setErr      error
	failNext    int
	readOnly    bool
	setCalls    int
	removeCalls int
}

// New creates a new in-memory store with no byte limit
func New() *Store {
	return &Store{
		data: make(map[string]string),
	}
}

// WithLimit caps the total stored bytes; writes past the cap fail with a
// QuotaError named "QuotaExceededError"
func (s *Store) WithLimit(limit int64) *Store {
	s.limit = limit
	return s
}

// WithSetError makes every SetItem call return err
func (s *Store) WithSetError(err error) *Store {
	s.setErr = err
	return s
}

// WithFailNext makes the next n SetItem calls fail with a QuotaError
func (s *Store) WithFailNext(n int) *Store {
	s.failNext = n
	return s
}

// WithReadOnly makes every SetItem call fail with an AccessError, which also
// defeats the adapter's capability probe
func (s *Store) WithReadOnly() *Store {
	s.readOnly = true
	return s
}

// GetItem returns the stored value for key
func (s *Store) GetItem(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	return v, ok
}

// SetItem stores value under key, honoring any injected failures and the
// byte limit
func (s *Store) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setCalls++

	if s.readOnly {
		return &kvstore.AccessError{Name: "SecurityError"}
	}
	if s.setErr != nil {
		return s.setErr
	}
	if s.failNext > 0 {
		s.failNext--
		return &kvstore.QuotaError{Name: "QuotaExceededError"}
	}

	delta := int64(len(key) + len(value))
	if prev, ok := s.data[key]; ok {
		delta -= int64(len(key) + len(prev))
	}
	if s.limit > 0 && s.used+delta > s.limit {
		return &kvstore.QuotaError{Name: "QuotaExceededError"}
	}

	s.data[key] = value
	s.used += delta
	return nil
}

// RemoveItem deletes key
func (s *Store) RemoveItem(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeCalls++
	if prev, ok := s.data[key]; ok {
		s.used -= int64(len(key) + len(prev))
		delete(s.data, key)
	}
}

// Keys lists every stored key
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// SetCalls returns how many SetItem calls the store has seen
func (s *Store) SetCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.setCalls
}

// RemoveCalls returns how many RemoveItem calls the store has seen
func (s *Store) RemoveCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.removeCalls
}

// BytesUsed returns the total bytes currently stored
func (s *Store) BytesUsed() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.used
}

// Len returns the number of stored keys
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
