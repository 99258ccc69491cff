package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"parkshare/internal/domain/reservation"
	"parkshare/internal/domain/spaces"
	"parkshare/internal/domain/user"
)

// ReservationRepository is an in-memory reservation store with the same
// optimistic versioning the Mongo repository enforces, so the sweep's
// compare-and-swap behaves identically in tests and dev.
type ReservationRepository struct {
	mu    sync.RWMutex
	items map[reservation.ID]reservation.Reservation
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{items: make(map[reservation.ID]reservation.Reservation)}
}

func (r *ReservationRepository) ByID(ctx context.Context, id reservation.ID) (*reservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.items[id]
	if !ok {
		return nil, reservation.ErrNotFound
	}
	return cloneReservation(stored), nil
}

func (r *ReservationRepository) Save(ctx context.Context, res *reservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, exists := r.items[res.ID]
	if exists && stored.Version != res.Version {
		return ErrConcurrentUpdate
	}
	next := *res
	next.Version = res.Version + 1
	next.ClearEvents()
	r.items[res.ID] = next
	res.Version = next.Version
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id reservation.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *ReservationRepository) ListByRenter(ctx context.Context, renterID user.ID) ([]*reservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*reservation.Reservation
	for _, res := range r.items {
		if res.RenterID == renterID {
			out = append(out, cloneReservation(res))
		}
	}
	sortByStart(out)
	return out, nil
}

func (r *ReservationRepository) ListBySpace(ctx context.Context, spaceID spaces.SpaceID) ([]*reservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*reservation.Reservation
	for _, res := range r.items {
		if res.SpaceID == spaceID {
			out = append(out, cloneReservation(res))
		}
	}
	sortByStart(out)
	return out, nil
}

func (r *ReservationRepository) ListConfirmedEndedBy(ctx context.Context, now time.Time) ([]*reservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*reservation.Reservation
	for _, res := range r.items {
		if res.Status == reservation.StatusConfirmed && res.Window.EndedBy(now) {
			out = append(out, cloneReservation(res))
		}
	}
	sortByStart(out)
	return out, nil
}

func cloneReservation(res reservation.Reservation) *reservation.Reservation {
	clone := res
	clone.ClearEvents()
	return &clone
}

func sortByStart(list []*reservation.Reservation) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].Window.Start.Before(list[j].Window.Start)
	})
}
