package booking

import (
	"context"
	"errors"
	"sync"

	"parkshare/internal/domain/spaces"
)

// ErrLockTimeout is returned when the per-space lock cannot be acquired
// before the caller's deadline. The request may be retried.
var ErrLockTimeout = errors.New("booking: timed out waiting for space lock")

// spaceLocks serializes the check-and-write critical section per space.
// Granularity is a single spaceID, so unrelated spaces never contend.
type spaceLocks struct {
	mu    sync.Mutex
	slots map[spaces.SpaceID]chan struct{}
}

func newSpaceLocks() *spaceLocks {
	return &spaceLocks{slots: make(map[spaces.SpaceID]chan struct{})}
}

func (l *spaceLocks) slot(id spaces.SpaceID) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[id]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[id] = slot
	}
	return slot
}

// acquire blocks until the space lock is held or ctx expires. The returned
// release function must be called exactly once.
func (l *spaceLocks) acquire(ctx context.Context, id spaces.SpaceID) (func(), error) {
	slot := l.slot(id)
	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrLockTimeout
		}
		return nil, ctx.Err()
	}
}
