package reservation

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRecurringSpecValidate(t *testing.T) {
	valid := RecurringSpec{
		Weekdays:    []time.Weekday{time.Monday, time.Wednesday},
		FirstDay:    day(2026, 3, 2),
		LastDay:     day(2026, 3, 31),
		StartMinute: 9 * 60,
		EndMinute:   17 * 60,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*RecurringSpec)
	}{
		{"no weekdays", func(s *RecurringSpec) { s.Weekdays = nil }},
		{"last before first", func(s *RecurringSpec) { s.LastDay = day(2026, 3, 1) }},
		{"zero dates", func(s *RecurringSpec) { s.FirstDay, s.LastDay = time.Time{}, time.Time{} }},
		{"end before start minute", func(s *RecurringSpec) { s.EndMinute = s.StartMinute }},
		{"negative start", func(s *RecurringSpec) { s.StartMinute = -1 }},
		{"past midnight", func(s *RecurringSpec) { s.EndMinute = 24*60 + 1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := valid
			spec.Weekdays = append([]time.Weekday(nil), valid.Weekdays...)
			tc.mutate(&spec)
			if err := spec.Validate(); !errors.Is(err, ErrInvalidRecurringSpec) {
				t.Fatalf("expected ErrInvalidRecurringSpec, got %v", err)
			}
		})
	}
}

func TestExpandProducesOrderedWindows(t *testing.T) {
	// March 2026: Mondays fall on 2, 9, 16, 23, 30; Wednesdays on 4, 11, 18, 25.
	spec := RecurringSpec{
		Weekdays:    []time.Weekday{time.Monday, time.Wednesday},
		FirstDay:    day(2026, 3, 2),
		LastDay:     day(2026, 3, 15),
		StartMinute: 9 * 60,
		EndMinute:   12 * 60,
	}
	windows, err := spec.Expand(time.UTC)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(windows) != 4 {
		t.Fatalf("got %d windows, want 4", len(windows))
	}
	wantDays := []int{2, 4, 9, 11}
	for i, w := range windows {
		if w.Start.Day() != wantDays[i] {
			t.Errorf("window %d starts on day %d, want %d", i, w.Start.Day(), wantDays[i])
		}
		if w.Start.Hour() != 9 || w.End.Hour() != 12 {
			t.Errorf("window %d has wrong clock range: %v", i, w)
		}
		if i > 0 && !windows[i-1].Start.Before(w.Start) {
			t.Errorf("windows out of order at %d", i)
		}
	}
}

func TestExpandUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	spec := RecurringSpec{
		Weekdays:    []time.Weekday{time.Tuesday},
		FirstDay:    day(2026, 3, 10),
		LastDay:     day(2026, 3, 10),
		StartMinute: 9 * 60,
		EndMinute:   10 * 60,
	}
	windows, err := spec.Expand(loc)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}
	// 09:00 PDT is 16:00 UTC.
	if got := windows[0].Start.UTC().Hour(); got != 16 {
		t.Fatalf("start hour in UTC = %d, want 16", got)
	}
}

func TestExpandEmptyAndOversized(t *testing.T) {
	empty := RecurringSpec{
		Weekdays:    []time.Weekday{time.Sunday},
		FirstDay:    day(2026, 3, 2), // Monday
		LastDay:     day(2026, 3, 6), // Friday
		StartMinute: 0,
		EndMinute:   60,
	}
	if _, err := empty.Expand(time.UTC); !errors.Is(err, ErrEmptyRecurringSpec) {
		t.Fatalf("expected ErrEmptyRecurringSpec, got %v", err)
	}

	oversized := RecurringSpec{
		Weekdays: []time.Weekday{
			time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
			time.Thursday, time.Friday, time.Saturday,
		},
		FirstDay:    day(2026, 1, 1),
		LastDay:     day(2026, 12, 31),
		StartMinute: 0,
		EndMinute:   60,
	}
	if _, err := oversized.Expand(time.UTC); !errors.Is(err, ErrTooManyOccurrences) {
		t.Fatalf("expected ErrTooManyOccurrences, got %v", err)
	}
}
