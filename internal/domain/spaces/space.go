package spaces

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("spaces: space not found")
	ErrInactive = errors.New("spaces: space is not active")
)

type SpaceID string

type OwnerID string

type Size string

const (
	SizeCompact   Size = "compact"
	SizeStandard  Size = "standard"
	SizeLarge     Size = "large"
	SizeOversized Size = "oversized"
)

type Kind string

const (
	KindOutdoor Kind = "outdoor"
	KindCovered Kind = "covered"
	KindGarage  Kind = "garage"
	KindStreet  Kind = "street"
)

// ParkingSpace is a read-only view of a listed space. The reservation engine
// never mutates it; the space-management side owns writes.
type ParkingSpace struct {
	ID              SpaceID
	OwnerID         OwnerID
	Title           string
	Address         string
	City            string
	Size            Size
	Kind            Kind
	HourlyRateCents int64
	Currency        string
	IsActive        bool
	Timezone        string
	CreatedAt       time.Time
}

// Location returns the IANA location of the space, falling back to UTC when
// the stored timezone is missing or unknown.
func (s ParkingSpace) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Catalog resolves spaces for the reservation engine.
type Catalog interface {
	ByID(ctx context.Context, id SpaceID) (*ParkingSpace, error)
	List(ctx context.Context, onlyActive bool) ([]*ParkingSpace, error)
	ListByOwner(ctx context.Context, ownerID OwnerID) ([]*ParkingSpace, error)
}
