package reservation

import (
	"errors"
	"testing"
	"time"

	"parkshare/internal/domain/pricing"
	"parkshare/internal/domain/shared/money"
	"parkshare/internal/domain/shared/timerange"
	"parkshare/internal/domain/user"
)

func newTestReservation(t *testing.T) *Reservation {
	t.Helper()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	window, err := timerange.New(start, start.Add(8*time.Hour))
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	res, err := New(CreateParams{
		ID:       "res-1",
		SpaceID:  "space-1",
		RenterID: "renter-1",
		Window:   window,
		Price: pricing.Breakdown{
			Total:         money.Must(6400, "USD"),
			PlatformFee:   money.Must(640, "USD"),
			OwnerEarnings: money.Must(5760, "USD"),
		},
		CreatedAt: start.Add(-24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return res
}

func TestNewStartsPendingAndRecordsRequested(t *testing.T) {
	res := newTestReservation(t)
	if res.Status != StatusPending {
		t.Fatalf("status = %s, want pending", res.Status)
	}
	if res.PaymentStatus != PaymentPending {
		t.Fatalf("payment status = %s, want pending", res.PaymentStatus)
	}
	events := res.PendingEvents()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].EventName() != "reservation.requested" {
		t.Fatalf("event = %s", events[0].EventName())
	}
}

func TestNewRequiresRenter(t *testing.T) {
	window, _ := timerange.New(time.Now(), time.Now().Add(time.Hour))
	if _, err := New(CreateParams{ID: "res-1", Window: window}); !errors.Is(err, ErrRenterRequired) {
		t.Fatalf("expected ErrRenterRequired, got %v", err)
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	res := newTestReservation(t)
	res.ClearEvents()

	owner := user.Actor{ID: "owner-1", Role: user.RoleOwner}
	now := res.Window.Start.Add(-time.Hour)
	if err := res.Confirm(owner, now); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if res.Status != StatusConfirmed {
		t.Fatalf("status = %s", res.Status)
	}

	if err := res.Complete(user.SystemActor(), res.Window.End); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.Status != StatusCompleted {
		t.Fatalf("status = %s", res.Status)
	}

	events := res.PendingEvents()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].EventName() != "reservation.confirmed" || events[1].EventName() != "reservation.completed" {
		t.Fatalf("events = %s, %s", events[0].EventName(), events[1].EventName())
	}
}

func TestCompleteBeforeIntervalEnds(t *testing.T) {
	res := newTestReservation(t)
	owner := user.Actor{ID: "owner-1", Role: user.RoleOwner}
	if err := res.Confirm(owner, res.Window.Start.Add(-time.Hour)); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	err := res.Complete(user.SystemActor(), res.Window.End.Add(-time.Minute))
	if !errors.Is(err, ErrIntervalNotElapsed) {
		t.Fatalf("expected ErrIntervalNotElapsed, got %v", err)
	}
	if res.Status != StatusConfirmed {
		t.Fatalf("failed transition mutated status to %s", res.Status)
	}
}

func TestRenterCannotConfirm(t *testing.T) {
	res := newTestReservation(t)
	renter := user.Actor{ID: "renter-1", Role: user.RoleRenter}
	if err := res.Confirm(renter, time.Now()); !errors.Is(err, ErrForbiddenTransition) {
		t.Fatalf("expected ErrForbiddenTransition, got %v", err)
	}
}

func TestCancelFromTerminalStateFails(t *testing.T) {
	res := newTestReservation(t)
	owner := user.Actor{ID: "owner-1", Role: user.RoleOwner}
	if err := res.Reject(owner, time.Now()); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	renter := user.Actor{ID: "renter-1", Role: user.RoleRenter}
	if err := res.Cancel(renter, time.Now()); !errors.Is(err, ErrForbiddenTransition) {
		t.Fatalf("expected ErrForbiddenTransition, got %v", err)
	}
}

func TestSetPaymentStatus(t *testing.T) {
	res := newTestReservation(t)
	res.ClearEvents()
	admin := user.Actor{ID: "admin-1", Role: user.RoleAdmin}

	if err := res.SetPaymentStatus(PaymentPaid, admin, time.Now()); err != nil {
		t.Fatalf("SetPaymentStatus: %v", err)
	}
	if res.PaymentStatus != PaymentPaid {
		t.Fatalf("payment status = %s", res.PaymentStatus)
	}
	// Idempotent repeat records nothing new.
	if err := res.SetPaymentStatus(PaymentPaid, admin, time.Now()); err != nil {
		t.Fatalf("repeat SetPaymentStatus: %v", err)
	}
	if got := len(res.PendingEvents()); got != 1 {
		t.Fatalf("got %d events, want 1", got)
	}

	if err := res.SetPaymentStatus("gone", admin, time.Now()); !errors.Is(err, ErrInvalidPaymentStatus) {
		t.Fatalf("expected ErrInvalidPaymentStatus, got %v", err)
	}
}

// Payment state is orthogonal: refunding a cancelled reservation works even
// though the reservation state machine is already terminal.
func TestPaymentStatusIgnoresReservationState(t *testing.T) {
	res := newTestReservation(t)
	renter := user.Actor{ID: "renter-1", Role: user.RoleRenter}
	if err := res.Cancel(renter, time.Now()); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	admin := user.Actor{ID: "admin-1", Role: user.RoleAdmin}
	if err := res.SetPaymentStatus(PaymentRefunded, admin, time.Now()); err != nil {
		t.Fatalf("SetPaymentStatus on cancelled: %v", err)
	}
}
