package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store for development and tests. It does
// not satisfy the multi-instance consistency requirement; production
// deployments use RedisStore.
type MemoryStore struct {
	mu     sync.Mutex
	events map[string][]time.Time
}

// NewMemoryStore creates a MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string][]time.Time)}
}

// Take implements Store with the same semantics as the redis script.
func (s *MemoryStore) Take(_ context.Context, key string, window time.Duration, limit int, now time.Time) (bool, int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-window)
	kept := s.events[key][:0]
	for _, t := range s.events[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	allowed := len(kept) < limit
	if allowed {
		kept = append(kept, now)
	}
	s.events[key] = kept

	oldest := now
	if len(kept) > 0 {
		oldest = kept[0]
	}
	return allowed, int64(len(kept)), oldest, nil
}
