package light

import (
	"fmt"
	"sync"
)

// Storage persists the light client's sync state as opaque blobs. A single
// writer per chain id is assumed; individual operations must be atomic.
type Storage interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
}

// Storage key layout.
func stateKey(chainID uint64) string {
	return fmt.Sprintf("states_%d", chainID)
}

func periodKey(chainID uint64, period uint32) string {
	return fmt.Sprintf("sync_%d_%d", chainID, period)
}

func anchorKey(chainID uint64) string {
	return fmt.Sprintf("anchor_%d", chainID)
}

// MemoryStorage is an in-memory Storage implementation.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStorage returns an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

// Get implements Storage.
func (s *MemoryStorage) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true
}

// Set implements Storage.
func (s *MemoryStorage) Set(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.data[key] = v
}

// Delete implements Storage.
func (s *MemoryStorage) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Len reports the number of stored keys.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
