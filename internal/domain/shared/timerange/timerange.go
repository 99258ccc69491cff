package timerange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("timerange: end must be after start")

// Range represents a half-open interval [Start, End) of instants.
type Range struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (Range, error) {
	r := Range{Start: start.UTC(), End: end.UTC()}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

func (r Range) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return ErrInvalidRange
	}
	if !r.End.After(r.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Overlaps reports whether two half-open ranges intersect. Ranges that
// merely touch at an endpoint do not overlap.
func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Adjacent reports whether the ranges touch at exactly one endpoint.
func (r Range) Adjacent(other Range) bool {
	return r.End.Equal(other.Start) || r.Start.Equal(other.End)
}

func (r Range) Contains(t time.Time) bool {
	t = t.UTC()
	return (t.Equal(r.Start) || t.After(r.Start)) && t.Before(r.End)
}

func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Seconds returns the whole-second length of the range.
func (r Range) Seconds() int64 {
	return int64(r.End.Sub(r.Start) / time.Second)
}

// EndedBy reports whether the range has fully elapsed at the given instant.
func (r Range) EndedBy(now time.Time) bool {
	return !r.End.After(now.UTC())
}
