package memory

import (
	"context"
	"sort"
	"sync"

	"parkshare/internal/domain/spaces"
)

// SpaceCatalog is an in-memory space catalog fed from fixtures; the engine
// only ever reads it.
type SpaceCatalog struct {
	mu    sync.RWMutex
	items map[spaces.SpaceID]spaces.ParkingSpace
}

func NewSpaceCatalog() *SpaceCatalog {
	return &SpaceCatalog{items: make(map[spaces.SpaceID]spaces.ParkingSpace)}
}

func (c *SpaceCatalog) ByID(ctx context.Context, id spaces.SpaceID) (*spaces.ParkingSpace, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	space, ok := c.items[id]
	if !ok {
		return nil, spaces.ErrNotFound
	}
	clone := space
	return &clone, nil
}

func (c *SpaceCatalog) List(ctx context.Context, onlyActive bool) ([]*spaces.ParkingSpace, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*spaces.ParkingSpace
	for _, space := range c.items {
		if onlyActive && !space.IsActive {
			continue
		}
		clone := space
		out = append(out, &clone)
	}
	sortSpaces(out)
	return out, nil
}

func (c *SpaceCatalog) ListByOwner(ctx context.Context, ownerID spaces.OwnerID) ([]*spaces.ParkingSpace, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*spaces.ParkingSpace
	for _, space := range c.items {
		if space.OwnerID == ownerID {
			clone := space
			out = append(out, &clone)
		}
	}
	sortSpaces(out)
	return out, nil
}

// Put seeds or replaces a space; used by fixture loading and tests.
func (c *SpaceCatalog) Put(ctx context.Context, space spaces.ParkingSpace) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[space.ID] = space
	return nil
}

func sortSpaces(list []*spaces.ParkingSpace) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
}
