package memory

import (
	"context"
	"sync"

	"parkshare/internal/app/booking"
)

type IdempotencyStore struct {
	mu    sync.RWMutex
	items map[string]booking.IdempotencyRecord
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{items: make(map[string]booking.IdempotencyRecord)}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (booking.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec booking.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rec.Key] = rec
	return nil
}

var _ booking.IdempotencyStore = (*IdempotencyStore)(nil)
