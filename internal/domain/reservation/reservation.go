package reservation

import (
	"context"
	"errors"
	"time"

	"parkshare/internal/domain/pricing"
	"parkshare/internal/domain/shared/events"
	"parkshare/internal/domain/shared/timerange"
	"parkshare/internal/domain/spaces"
	"parkshare/internal/domain/user"
)

var (
	ErrNotFound             = errors.New("reservation: not found")
	ErrRenterRequired       = errors.New("reservation: renter id required")
	ErrInvalidPaymentStatus = errors.New("reservation: invalid payment status")
)

type ID string

// GroupID links sibling occurrences of a recurring series.
type GroupID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// Active reports whether the status counts toward conflict checks.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentPaid              PaymentStatus = "paid"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentRefunded, PaymentPartiallyRefunded:
		return true
	}
	return false
}

// Reservation is a request to occupy a parking space for a time window.
// Reservations are never hard-deleted; terminal statuses keep the record
// around for history.
type Reservation struct {
	ID            ID
	SpaceID       spaces.SpaceID
	RenterID      user.ID
	Window        timerange.Range
	Status        Status
	PaymentStatus PaymentStatus
	Price         pricing.Breakdown
	IsRecurring   bool
	GroupID       GroupID
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Reservation, error)
	Save(ctx context.Context, res *Reservation) error
	// Delete removes a record outright. Only creation unwinding calls it;
	// lifecycle transitions keep terminal records for history.
	Delete(ctx context.Context, id ID) error
	ListByRenter(ctx context.Context, renterID user.ID) ([]*Reservation, error)
	ListBySpace(ctx context.Context, spaceID spaces.SpaceID) ([]*Reservation, error)
	// ListConfirmedEndedBy returns confirmed reservations whose window has
	// fully elapsed at the given instant; the completion sweep feeds on it.
	ListConfirmedEndedBy(ctx context.Context, now time.Time) ([]*Reservation, error)
}

type CreateParams struct {
	ID          ID
	SpaceID     spaces.SpaceID
	RenterID    user.ID
	Window      timerange.Range
	Price       pricing.Breakdown
	IsRecurring bool
	GroupID     GroupID
	CreatedAt   time.Time
}

func New(params CreateParams) (*Reservation, error) {
	if params.RenterID == "" {
		return nil, ErrRenterRequired
	}
	if err := params.Window.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	r := &Reservation{
		ID:            params.ID,
		SpaceID:       params.SpaceID,
		RenterID:      params.RenterID,
		Window:        params.Window,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		Price:         params.Price,
		IsRecurring:   params.IsRecurring,
		GroupID:       params.GroupID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.Record(Requested{
		ReservationID: r.ID,
		SpaceID:       r.SpaceID,
		RenterID:      r.RenterID,
		Window:        r.Window,
		Total:         r.Price.Total,
		At:            now,
	})
	return r, nil
}

// Confirm moves pending→confirmed. Identity checks (actor owns the space)
// belong to the caller; the aggregate enforces state and role.
func (r *Reservation) Confirm(actor user.Actor, now time.Time) error {
	return r.transition(StatusConfirmed, actor, now)
}

func (r *Reservation) Reject(actor user.Actor, now time.Time) error {
	return r.transition(StatusRejected, actor, now)
}

func (r *Reservation) Cancel(actor user.Actor, now time.Time) error {
	return r.transition(StatusCancelled, actor, now)
}

func (r *Reservation) Complete(actor user.Actor, now time.Time) error {
	return r.transition(StatusCompleted, actor, now)
}

func (r *Reservation) MarkNoShow(actor user.Actor, now time.Time) error {
	return r.transition(StatusNoShow, actor, now)
}

func (r *Reservation) transition(to Status, actor user.Actor, now time.Time) error {
	if err := Authorize(r.Status, to, actor.Role, now, r.Window.End); err != nil {
		return err
	}
	from := r.Status
	r.Status = to
	r.UpdatedAt = now.UTC()
	r.Record(Transitioned{
		ReservationID: r.ID,
		SpaceID:       r.SpaceID,
		From:          from,
		To:            to,
		ActorID:       actor.ID,
		At:            r.UpdatedAt,
	})
	return nil
}

// SetPaymentStatus is the narrow setter used by the payment collaborator.
// It bypasses the reservation state machine on purpose: payment state is an
// orthogonal axis.
func (r *Reservation) SetPaymentStatus(status PaymentStatus, actor user.Actor, now time.Time) error {
	if !ValidPaymentStatus(status) {
		return ErrInvalidPaymentStatus
	}
	if r.PaymentStatus == status {
		return nil
	}
	from := r.PaymentStatus
	r.PaymentStatus = status
	r.UpdatedAt = now.UTC()
	r.Record(PaymentStatusChanged{
		ReservationID: r.ID,
		From:          from,
		To:            status,
		ActorID:       actor.ID,
		At:            r.UpdatedAt,
	})
	return nil
}
