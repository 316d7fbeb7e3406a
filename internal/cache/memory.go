package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the process-local fallback backend: a mutex-guarded map of
// {value, expiry}. Expired entries are deleted lazily on read; there is no
// background sweep and no size bound. Each worker process has its own copy,
// so this backend is only suitable for single-worker deployments.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time // injectable for tests
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemoryStore returns an empty in-memory cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, key)
		return nil, false
	}
	return e.value, true
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: value, expires: s.now().Add(ttl)}
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]memoryEntry)
	return nil
}

func (s *MemoryStore) Stats(_ context.Context) (int64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.entries)), "memory"
}
