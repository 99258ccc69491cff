package availability

import (
	"context"
	"errors"

	"parkshare/internal/domain/reservation"
	"parkshare/internal/domain/shared/timerange"
	"parkshare/internal/domain/spaces"
)

// ErrConflict signals that a requested window overlaps an active reservation
// for the same space.
var ErrConflict = errors.New("availability: window conflicts with an active reservation")

// Entry is one occupied window of a space.
type Entry struct {
	ReservationID reservation.ID
	Window        timerange.Range
}

// Index answers overlap queries over active (pending or confirmed)
// reservations. Entries are inserted when a reservation enters the active
// set and removed when it leaves it; the booking service keeps the two in
// step under the per-space lock.
type Index interface {
	// HasConflict reports whether any active window of the space overlaps the
	// given one. excludeID, when non-empty, skips that reservation so a record
	// can be re-evaluated against its neighbours only.
	HasConflict(ctx context.Context, spaceID spaces.SpaceID, window timerange.Range, excludeID reservation.ID) (bool, error)
	Insert(ctx context.Context, spaceID spaces.SpaceID, entry Entry) error
	Remove(ctx context.Context, spaceID spaces.SpaceID, id reservation.ID) error
}
