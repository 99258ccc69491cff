package memory

import (
	"context"
	"sort"
	"sync"

	"parkshare/internal/domain/availability"
	"parkshare/internal/domain/reservation"
	"parkshare/internal/domain/shared/timerange"
	"parkshare/internal/domain/spaces"
)

// AvailabilityIndex keeps one interval set per space, sorted by window
// start. Queries binary-search the upper bound and scan the candidates
// before it; adjacent windows never count as conflicts because ranges are
// half-open.
type AvailabilityIndex struct {
	mu     sync.RWMutex
	spaces map[spaces.SpaceID][]availability.Entry
}

func NewAvailabilityIndex() *AvailabilityIndex {
	return &AvailabilityIndex{spaces: make(map[spaces.SpaceID][]availability.Entry)}
}

func (x *AvailabilityIndex) HasConflict(ctx context.Context, spaceID spaces.SpaceID, window timerange.Range, excludeID reservation.ID) (bool, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	entries := x.spaces[spaceID]
	// First entry starting at or after the window's end can no longer
	// overlap, nor can anything after it.
	bound := sort.Search(len(entries), func(i int) bool {
		return !entries[i].Window.Start.Before(window.End)
	})
	for i := 0; i < bound; i++ {
		if excludeID != "" && entries[i].ReservationID == excludeID {
			continue
		}
		if entries[i].Window.Overlaps(window) {
			return true, nil
		}
	}
	return false, nil
}

func (x *AvailabilityIndex) Insert(ctx context.Context, spaceID spaces.SpaceID, entry availability.Entry) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	entries := x.spaces[spaceID]
	at := sort.Search(len(entries), func(i int) bool {
		return entries[i].Window.Start.After(entry.Window.Start)
	})
	entries = append(entries, availability.Entry{})
	copy(entries[at+1:], entries[at:])
	entries[at] = entry
	x.spaces[spaceID] = entries
	return nil
}

func (x *AvailabilityIndex) Remove(ctx context.Context, spaceID spaces.SpaceID, id reservation.ID) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	entries := x.spaces[spaceID]
	for i, entry := range entries {
		if entry.ReservationID == id {
			x.spaces[spaceID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}
	// Removing an unindexed reservation is a no-op: terminal transitions may
	// race a sweep that already dropped the entry.
	return nil
}

var _ availability.Index = (*AvailabilityIndex)(nil)
