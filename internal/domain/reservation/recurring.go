package reservation

import (
	"errors"
	"time"

	"parkshare/internal/domain/shared/timerange"
)

var (
	ErrInvalidRecurringSpec = errors.New("reservation: invalid recurring spec")
	ErrEmptyRecurringSpec   = errors.New("reservation: recurring spec yields no occurrences")
	ErrTooManyOccurrences   = errors.New("reservation: recurring spec yields too many occurrences")
)

// MaxRecurringOccurrences bounds how many occurrences one request may create.
const MaxRecurringOccurrences = 90

// RecurringSpec describes a series of daily occurrences: on each listed
// weekday between FirstDay and LastDay (inclusive calendar dates), reserve
// the clock window [StartMinute, EndMinute) of that day.
type RecurringSpec struct {
	Weekdays    []time.Weekday
	FirstDay    time.Time
	LastDay     time.Time
	StartMinute int
	EndMinute   int
}

func (s RecurringSpec) Validate() error {
	if len(s.Weekdays) == 0 {
		return ErrInvalidRecurringSpec
	}
	for _, wd := range s.Weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return ErrInvalidRecurringSpec
		}
	}
	if s.FirstDay.IsZero() || s.LastDay.IsZero() || s.LastDay.Before(s.FirstDay) {
		return ErrInvalidRecurringSpec
	}
	if s.StartMinute < 0 || s.EndMinute > 24*60 || s.EndMinute <= s.StartMinute {
		return ErrInvalidRecurringSpec
	}
	return nil
}

// Expand materializes the occurrence windows in the given location, usually
// the space's timezone. The result is ordered by start time.
func (s RecurringSpec) Expand(loc *time.Location) ([]timerange.Range, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	wanted := make(map[time.Weekday]bool, len(s.Weekdays))
	for _, wd := range s.Weekdays {
		wanted[wd] = true
	}

	// Only the calendar date of FirstDay/LastDay matters; the date is
	// re-anchored at midnight in loc, ignoring the value's own location.
	day := time.Date(s.FirstDay.Year(), s.FirstDay.Month(), s.FirstDay.Day(), 0, 0, 0, 0, loc)
	end := time.Date(s.LastDay.Year(), s.LastDay.Month(), s.LastDay.Day(), 0, 0, 0, 0, loc)

	var out []timerange.Range
	for !day.After(end) {
		if wanted[day.Weekday()] {
			window, err := timerange.New(
				day.Add(time.Duration(s.StartMinute)*time.Minute),
				day.Add(time.Duration(s.EndMinute)*time.Minute),
			)
			if err != nil {
				return nil, err
			}
			out = append(out, window)
			if len(out) > MaxRecurringOccurrences {
				return nil, ErrTooManyOccurrences
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	if len(out) == 0 {
		return nil, ErrEmptyRecurringSpec
	}
	return out, nil
}
