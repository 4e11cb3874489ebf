// Package storagetest provides an in-memory storage.Storage implementation
// with injectable faults for exercising session persistence failure paths.
package storagetest

import (
	"sync"
	"time"

	"github.com/gofiber/storage"
)

// Storage is an in-memory storage.Storage. The zero value is not usable;
// create instances with New.
//
// Faults are injected by setting the error fields. SetErr takes effect after
// SetErrAfter successful writes, which allows failing a specific write in a
// multi-entry persist sequence.
type Storage struct {
	mu   sync.RWMutex
	data map[string][]byte

	// GetErr, when non-nil, is returned by every Get call.
	GetErr error
	// SetErr, when non-nil, is returned by Set once SetErrAfter successful
	// writes have happened.
	SetErr error
	// SetErrAfter is the number of Set calls that succeed before SetErr kicks
	// in.
	SetErrAfter int
	// DeleteErr, when non-nil, is returned by every Delete call.
	DeleteErr error

	setCalls int
}

// Ensure Storage implements the storage.Storage interface.
var _ storage.Storage = (*Storage)(nil)

// New creates an empty test storage.
func New() *Storage {
	return &Storage{data: make(map[string][]byte)}
}

// Get returns the value for key, or nil when absent. Expiry is ignored.
func (s *Storage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.GetErr != nil {
		return nil, s.GetErr
	}

	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}

	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

// Set stores a copy of val under key.
func (s *Storage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SetErr != nil && s.setCalls >= s.SetErrAfter {
		return s.SetErr
	}

	s.setCalls++

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Storage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DeleteErr != nil {
		return s.DeleteErr
	}

	delete(s.data, key)

	return nil
}

// Reset drops all entries.
func (s *Storage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)
	s.setCalls = 0

	return nil
}

// Close is a no-op.
func (s *Storage) Close() error { return nil }

// Len returns the number of stored entries.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}

// Put stores an entry directly, bypassing fault injection. Tests use it to
// set up corrupted or partial state.
func (s *Storage) Put(key string, val []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf
}

// Drop removes an entry directly, bypassing fault injection.
func (s *Storage) Drop(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
}
