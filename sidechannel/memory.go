package sidechannel

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory side channel with the same expiry semantics as the Redis
// implementation. It exists for tests, which can substitute a fake clock to step time
// past an entry's TTL.
type MemoryStore struct {
	mutex   sync.Mutex
	clock   func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryStore returns an in-memory side channel using the real clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock returns an in-memory side channel that reads the current time
// from the given function.
func NewMemoryStoreWithClock(clock func() time.Time) *MemoryStore {
	return &MemoryStore{
		clock:   clock,
		entries: make(map[string]memoryEntry),
	}
}

// Put stores a value with a time to live.
func (s *MemoryStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.entries[key] = memoryEntry{value: value, expiresAt: s.clock().Add(ttl)}
	return nil
}

// Get retrieves the value stored under a key, pruning it if it has expired.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	entry, ok := s.lookup(key)
	if !ok {
		return "", false, nil
	}
	return entry.value, true, nil
}

// RemainingTTL reports how long the value stored under a key has left to live.
func (s *MemoryStore) RemainingTTL(ctx context.Context, key string) (time.Duration, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	entry, ok := s.lookup(key)
	if !ok {
		return 0, false, nil
	}
	return entry.expiresAt.Sub(s.clock()), true, nil
}

// lookup retrieves a live entry, removing it if it has expired. The caller must hold
// the mutex.
func (s *MemoryStore) lookup(key string) (memoryEntry, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !s.clock().Before(entry.expiresAt) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}
