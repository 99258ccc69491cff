package reservation

import (
	"time"

	"parkshare/internal/domain/shared/money"
	"parkshare/internal/domain/shared/timerange"
	"parkshare/internal/domain/spaces"
	"parkshare/internal/domain/user"
)

type Requested struct {
	ReservationID ID
	SpaceID       spaces.SpaceID
	RenterID      user.ID
	Window        timerange.Range
	Total         money.Money
	At            time.Time
}

func (e Requested) EventName() string     { return "reservation.requested" }
func (e Requested) AggregateID() string   { return string(e.ReservationID) }
func (e Requested) OccurredAt() time.Time { return e.At }

// Transitioned is emitted for every committed status change and carries the
// payload the notification dispatcher consumes.
type Transitioned struct {
	ReservationID ID
	SpaceID       spaces.SpaceID
	From          Status
	To            Status
	ActorID       user.ID
	At            time.Time
}

func (e Transitioned) EventName() string     { return "reservation." + string(e.To) }
func (e Transitioned) AggregateID() string   { return string(e.ReservationID) }
func (e Transitioned) OccurredAt() time.Time { return e.At }

type PaymentStatusChanged struct {
	ReservationID ID
	From          PaymentStatus
	To            PaymentStatus
	ActorID       user.ID
	At            time.Time
}

func (e PaymentStatusChanged) EventName() string     { return "reservation.payment_status_changed" }
func (e PaymentStatusChanged) AggregateID() string   { return string(e.ReservationID) }
func (e PaymentStatusChanged) OccurredAt() time.Time { return e.At }
