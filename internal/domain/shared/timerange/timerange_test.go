package timerange

import (
	"errors"
	"testing"
	"time"
)

func mustRange(t *testing.T, start, end time.Time) Range {
	t.Helper()
	r, err := New(start, end)
	if err != nil {
		t.Fatalf("New(%v, %v): %v", start, end, err)
	}
	return r
}

func TestNewRejectsInvalidRanges(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{"end equals start", base, base},
		{"end before start", base, base.Add(-time.Hour)},
		{"zero start", time.Time{}, base},
		{"zero end", base, time.Time{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.start, tc.end); !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("expected ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestNewNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("PST", -8*3600)
	r := mustRange(t, time.Date(2026, 3, 10, 9, 0, 0, 0, loc), time.Date(2026, 3, 10, 17, 0, 0, 0, loc))
	if r.Start.Location() != time.UTC || r.End.Location() != time.UTC {
		t.Fatalf("range not normalized to UTC: %v", r)
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	cases := []struct {
		name string
		a, b Range
		want bool
	}{
		{"identical", Range{at(9), at(17)}, Range{at(9), at(17)}, true},
		{"partial overlap", Range{at(9), at(12)}, Range{at(11), at(14)}, true},
		{"contained", Range{at(9), at(17)}, Range{at(10), at(11)}, true},
		{"adjacent end-to-start", Range{at(9), at(12)}, Range{at(12), at(15)}, false},
		{"adjacent start-to-end", Range{at(12), at(15)}, Range{at(9), at(12)}, false},
		{"disjoint", Range{at(9), at(10)}, Range{at(11), at(12)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Fatalf("Overlaps not symmetric: %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAdjacent(t *testing.T) {
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	a := mustRange(t, base, base.Add(2*time.Hour))
	b := mustRange(t, base.Add(2*time.Hour), base.Add(4*time.Hour))
	c := mustRange(t, base.Add(5*time.Hour), base.Add(6*time.Hour))

	if !a.Adjacent(b) || !b.Adjacent(a) {
		t.Fatal("touching ranges should be adjacent")
	}
	if a.Adjacent(c) {
		t.Fatal("disjoint ranges are not adjacent")
	}
	if a.Overlaps(b) {
		t.Fatal("adjacent ranges must not overlap")
	}
}

func TestContains(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	r := mustRange(t, base, base.Add(8*time.Hour))

	if !r.Contains(base) {
		t.Fatal("start instant belongs to the range")
	}
	if r.Contains(base.Add(8 * time.Hour)) {
		t.Fatal("end instant is excluded from the range")
	}
	if !r.Contains(base.Add(4 * time.Hour)) {
		t.Fatal("midpoint belongs to the range")
	}
}

func TestSecondsAndEndedBy(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	r := mustRange(t, base, base.Add(90*time.Minute))

	if got := r.Seconds(); got != 5400 {
		t.Fatalf("Seconds = %d, want 5400", got)
	}
	if r.EndedBy(base.Add(89 * time.Minute)) {
		t.Fatal("range has not elapsed yet")
	}
	if !r.EndedBy(base.Add(90 * time.Minute)) {
		t.Fatal("range is over exactly at its end")
	}
}
