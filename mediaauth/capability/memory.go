package capability

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MemoryStore is an in-process single-use store.
// It is only suitable for single-instance deployments.
type MemoryStore struct {
	entries map[string]time.Time

	initOnce sync.Once
	mu       sync.Mutex

	clock clockwork.Clock
}

// NewMemoryStore returns a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clock: clockwork.NewRealClock(),
	}
}

// NewMemoryStoreWithClock returns a new MemoryStore using clock for expiry.
func NewMemoryStoreWithClock(clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		clock: clock,
	}
}

func (s *MemoryStore) init() {
	s.initOnce.Do(func() {
		if s.entries == nil {
			s.entries = make(map[string]time.Time)
		}
		if s.clock == nil {
			s.clock = clockwork.NewRealClock()
		}
	})
}

// Redeem implements the Store interface.
func (s *MemoryStore) Redeem(_ context.Context, token string, ttl time.Duration) (bool, error) {
	s.init()
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()

	// Expired entries pile up between redemptions of distinct tokens,
	// so sweep them on every call. TTLs are short, the map stays small.
	for key, expiry := range s.entries {
		if now.After(expiry) {
			delete(s.entries, key)
		}
	}

	if expiry, ok := s.entries[token]; ok && !now.After(expiry) {
		return true, nil
	}

	s.entries[token] = now.Add(ttl)

	return false, nil
}
