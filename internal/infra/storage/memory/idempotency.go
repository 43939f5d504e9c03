package memory

import (
	"context"
	"sync"
	"time"

	"staybook/internal/app/middleware"
)

// IdempotencyStore keeps command outcomes in memory until TTL elapses.
type IdempotencyStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]middleware.IdempotencyRecord
	now   func() time.Time
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{ttl: ttl, items: make(map[string]middleware.IdempotencyRecord), now: time.Now}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	rec, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if s.ttl > 0 && s.now().Sub(rec.OccurredAt) > s.ttl {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return middleware.IdempotencyRecord{}, false, nil
	}
	return rec, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rec.Key] = rec
	return nil
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
