package memory

import (
	"context"
	"testing"
	"time"

	"parkshare/internal/domain/availability"
	"parkshare/internal/domain/reservation"
	"parkshare/internal/domain/shared/timerange"
	"parkshare/internal/domain/spaces"
)

func entry(t *testing.T, id string, start, end time.Time) availability.Entry {
	t.Helper()
	window, err := timerange.New(start, end)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	return availability.Entry{ReservationID: reservation.ID(id), Window: window}
}

func TestIndexConflictDetection(t *testing.T) {
	ctx := context.Background()
	idx := NewAvailabilityIndex()
	space := spaces.SpaceID("space-1")
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	// Insert out of order to exercise the sorted insertion path.
	for _, e := range []availability.Entry{
		entry(t, "r-afternoon", at(13), at(17)),
		entry(t, "r-morning", at(9), at(12)),
		entry(t, "r-evening", at(18), at(20)),
	} {
		if err := idx.Insert(ctx, space, e); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	cases := []struct {
		name       string
		start, end int
		want       bool
	}{
		{"inside existing", 10, 11, true},
		{"spans two bookings", 11, 14, true},
		{"free gap", 12, 13, false},
		{"adjacent to morning end", 12, 13, false},
		{"adjacent to evening start", 17, 18, false},
		{"before everything", 6, 9, false},
		{"after everything", 20, 23, false},
		{"covers whole day", 0, 24, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			window, _ := timerange.New(at(tc.start), at(tc.end))
			got, err := idx.HasConflict(ctx, space, window, "")
			if err != nil {
				t.Fatalf("HasConflict: %v", err)
			}
			if got != tc.want {
				t.Fatalf("HasConflict([%d,%d)) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestIndexExcludeAndRemove(t *testing.T) {
	ctx := context.Background()
	idx := NewAvailabilityIndex()
	space := spaces.SpaceID("space-1")
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	booked := entry(t, "r-1", base, base.Add(3*time.Hour))
	if err := idx.Insert(ctx, space, booked); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	// A reservation never conflicts with itself.
	got, err := idx.HasConflict(ctx, space, booked.Window, booked.ReservationID)
	if err != nil || got {
		t.Fatalf("self-conflict = %v, %v", got, err)
	}

	if err := idx.Remove(ctx, space, booked.ReservationID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	got, err = idx.HasConflict(ctx, space, booked.Window, "")
	if err != nil || got {
		t.Fatalf("conflict after removal = %v, %v", got, err)
	}

	// Removing again is a no-op.
	if err := idx.Remove(ctx, space, booked.ReservationID); err != nil {
		t.Fatalf("repeat Remove: %v", err)
	}
}

func TestIndexIsolatesSpaces(t *testing.T) {
	ctx := context.Background()
	idx := NewAvailabilityIndex()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	e := entry(t, "r-1", base, base.Add(2*time.Hour))
	if err := idx.Insert(ctx, "space-1", e); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := idx.HasConflict(ctx, "space-2", e.Window, "")
	if err != nil || got {
		t.Fatalf("cross-space conflict = %v, %v", got, err)
	}
}
