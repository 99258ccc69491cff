package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"parkshare/internal/app/outbox"
	"parkshare/internal/domain/availability"
	"parkshare/internal/domain/pricing"
	"parkshare/internal/domain/reservation"
	"parkshare/internal/domain/shared/timerange"
	"parkshare/internal/domain/spaces"
	"parkshare/internal/domain/user"
)

var (
	// ErrNotSpaceOwner is returned when an owner-gated transition is requested
	// by an owner who does not own the target space. Role alone is not enough.
	ErrNotSpaceOwner = errors.New("booking: actor does not own this space")
	// ErrNotReservationRenter guards renter-gated operations the same way.
	ErrNotReservationRenter = errors.New("booking: actor did not place this reservation")
	ErrAccessDenied         = errors.New("booking: access denied")
)

const defaultLockTimeout = 3 * time.Second

// Service is the single facade for every reservation lifecycle operation.
// It owns the per-space critical section: conflict check, price quote,
// reservation write and index update happen under one lock per space.
type Service struct {
	reservations reservation.Repository
	catalog      spaces.Catalog
	index        availability.Index
	pricing      pricing.Engine
	outbox       outbox.Outbox
	encoder      outbox.EventEncoder
	logger       *slog.Logger
	locks        *spaceLocks
	lockTimeout  time.Duration
	now          func() time.Time
}

type Config struct {
	Reservations reservation.Repository
	Catalog      spaces.Catalog
	Index        availability.Index
	Pricing      pricing.Engine
	Outbox       outbox.Outbox
	Encoder      outbox.EventEncoder
	Logger       *slog.Logger
	LockTimeout  time.Duration
	Now          func() time.Time
}

var ErrServiceMisconfigured = errors.New("booking: service missing dependencies")

func NewService(cfg Config) (*Service, error) {
	if cfg.Reservations == nil || cfg.Catalog == nil || cfg.Index == nil {
		return nil, ErrServiceMisconfigured
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = defaultLockTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		reservations: cfg.Reservations,
		catalog:      cfg.Catalog,
		index:        cfg.Index,
		pricing:      cfg.Pricing,
		outbox:       cfg.Outbox,
		encoder:      cfg.Encoder,
		logger:       cfg.Logger,
		locks:        newSpaceLocks(),
		lockTimeout:  cfg.LockTimeout,
		now:          cfg.Now,
	}, nil
}

// Create books a single window. First committer wins: concurrent overlapping
// requests for the same space serialize on the space lock and the loser gets
// availability.ErrConflict with nothing written.
func (s *Service) Create(ctx context.Context, actor user.Actor, spaceID spaces.SpaceID, start, end time.Time) (*reservation.Reservation, error) {
	window, err := timerange.New(start, end)
	if err != nil {
		return nil, err
	}
	space, err := s.activeSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}

	release, err := s.lockSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	defer release()

	conflict, err := s.index.HasConflict(ctx, spaceID, window, "")
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, availability.ErrConflict
	}

	res, err := s.buildReservation(space, actor.ID, window, false, "")
	if err != nil {
		return nil, err
	}
	if err := s.commitNew(ctx, res); err != nil {
		return nil, err
	}
	s.logger.Info("reservation created",
		"reservation_id", res.ID, "space_id", spaceID, "renter_id", actor.ID,
		"total", res.Price.Total.String())
	return res, nil
}

// CreateRecurring books a whole series or nothing. Every occurrence is
// checked for conflicts before any record is written, and a write failure
// partway through unwinds the occurrences already staged.
func (s *Service) CreateRecurring(ctx context.Context, actor user.Actor, spaceID spaces.SpaceID, spec reservation.RecurringSpec) ([]*reservation.Reservation, error) {
	space, err := s.activeSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	windows, err := spec.Expand(space.Location())
	if err != nil {
		return nil, err
	}

	release, err := s.lockSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	defer release()

	for _, window := range windows {
		conflict, err := s.index.HasConflict(ctx, spaceID, window, "")
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, availability.ErrConflict
		}
	}

	groupID := reservation.GroupID(uuid.NewString())
	out := make([]*reservation.Reservation, 0, len(windows))
	for _, window := range windows {
		res, err := s.buildReservation(space, actor.ID, window, true, groupID)
		if err == nil {
			err = s.stageNew(ctx, res)
		}
		if err != nil {
			s.discard(ctx, out...)
			return nil, err
		}
		out = append(out, res)
	}
	for _, res := range out {
		if err := s.drainEvents(ctx, res); err != nil {
			s.discard(ctx, out...)
			return nil, err
		}
	}
	s.logger.Info("recurring reservation created",
		"group_id", groupID, "space_id", spaceID, "occurrences", len(out))
	return out, nil
}

// Approve confirms a pending reservation. The availability re-check guards
// against conflicts that appeared after creation; when one is found the
// reservation stays pending for the owner to resolve.
func (s *Service) Approve(ctx context.Context, actor user.Actor, id reservation.ID) (*reservation.Reservation, error) {
	res, err := s.reservations.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireSpaceOwner(ctx, actor, res.SpaceID); err != nil {
		return nil, err
	}

	release, err := s.lockSpace(ctx, res.SpaceID)
	if err != nil {
		return nil, err
	}
	defer release()

	conflict, err := s.index.HasConflict(ctx, res.SpaceID, res.Window, res.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, availability.ErrConflict
	}

	if err := res.Confirm(actor, s.now()); err != nil {
		return nil, err
	}
	if err := s.commitUpdate(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) Reject(ctx context.Context, actor user.Actor, id reservation.ID) (*reservation.Reservation, error) {
	res, err := s.reservations.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireSpaceOwner(ctx, actor, res.SpaceID); err != nil {
		return nil, err
	}

	release, err := s.lockSpace(ctx, res.SpaceID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := res.Reject(actor, s.now()); err != nil {
		return nil, err
	}
	if err := s.commitUpdate(ctx, res); err != nil {
		return nil, err
	}
	if err := s.index.Remove(ctx, res.SpaceID, res.ID); err != nil {
		return nil, err
	}
	return res, nil
}

// Cancel is open to the renter who placed the reservation, the owner of its
// space and admins, from any non-terminal state.
func (s *Service) Cancel(ctx context.Context, actor user.Actor, id reservation.ID) (*reservation.Reservation, error) {
	res, err := s.reservations.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case user.RoleRenter:
		if res.RenterID != actor.ID {
			return nil, ErrNotReservationRenter
		}
	case user.RoleOwner:
		if err := s.requireSpaceOwner(ctx, actor, res.SpaceID); err != nil {
			return nil, err
		}
	}

	release, err := s.lockSpace(ctx, res.SpaceID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := res.Cancel(actor, s.now()); err != nil {
		return nil, err
	}
	if err := s.commitUpdate(ctx, res); err != nil {
		return nil, err
	}
	if err := s.index.Remove(ctx, res.SpaceID, res.ID); err != nil {
		return nil, err
	}
	return res, nil
}

// Complete moves a confirmed reservation whose window has elapsed to
// completed. Admin-only outside the sweep.
func (s *Service) Complete(ctx context.Context, actor user.Actor, id reservation.ID) (*reservation.Reservation, error) {
	return s.finish(ctx, actor, id, reservation.StatusCompleted)
}

// MarkNoShow records that the renter never showed up. There is no check-in
// signal in the system, so this is never applied automatically.
func (s *Service) MarkNoShow(ctx context.Context, actor user.Actor, id reservation.ID) (*reservation.Reservation, error) {
	return s.finish(ctx, actor, id, reservation.StatusNoShow)
}

func (s *Service) finish(ctx context.Context, actor user.Actor, id reservation.ID, target reservation.Status) (*reservation.Reservation, error) {
	res, err := s.reservations.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	release, err := s.lockSpace(ctx, res.SpaceID)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.now()
	switch target {
	case reservation.StatusCompleted:
		err = res.Complete(actor, now)
	case reservation.StatusNoShow:
		err = res.MarkNoShow(actor, now)
	default:
		err = reservation.ErrForbiddenTransition
	}
	if err != nil {
		return nil, err
	}
	if err := s.commitUpdate(ctx, res); err != nil {
		return nil, err
	}
	if err := s.index.Remove(ctx, res.SpaceID, res.ID); err != nil {
		return nil, err
	}
	return res, nil
}

// SweepCompletions transitions every confirmed reservation whose window has
// elapsed at now to completed. Failures on individual records are logged and
// skipped so one bad record never aborts the batch; re-running with the same
// now is a no-op.
func (s *Service) SweepCompletions(ctx context.Context, now time.Time) (int, error) {
	due, err := s.reservations.ListConfirmedEndedBy(ctx, now)
	if err != nil {
		return 0, err
	}
	actor := user.SystemActor()
	count := 0
	for _, res := range due {
		if err := s.sweepOne(ctx, actor, res.ID, now); err != nil {
			s.logger.Warn("sweep skipped reservation", "reservation_id", res.ID, "error", err)
			continue
		}
		count++
	}
	if count > 0 {
		s.logger.Info("completion sweep finished", "transitioned", count, "now", now.UTC())
	}
	return count, nil
}

func (s *Service) sweepOne(ctx context.Context, actor user.Actor, id reservation.ID, now time.Time) error {
	release, err := s.lockSpaceOf(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	// Reload under the lock: a concurrent cancel may have won the race since
	// the sweep listed this record.
	res, err := s.reservations.ByID(ctx, id)
	if err != nil {
		return err
	}
	if res.Status != reservation.StatusConfirmed {
		return nil
	}
	if err := res.Complete(actor, now); err != nil {
		return err
	}
	if err := s.commitUpdate(ctx, res); err != nil {
		return err
	}
	return s.index.Remove(ctx, res.SpaceID, res.ID)
}

// MarkPaymentStatus is the narrow setter exposed to the payment collaborator.
func (s *Service) MarkPaymentStatus(ctx context.Context, actor user.Actor, id reservation.ID, status reservation.PaymentStatus) (*reservation.Reservation, error) {
	res, err := s.reservations.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := res.SetPaymentStatus(status, actor, s.now()); err != nil {
		return nil, err
	}
	if err := s.commitUpdate(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ByID returns a reservation the actor is allowed to see: its renter, the
// owner of its space, or an admin.
func (s *Service) ByID(ctx context.Context, actor user.Actor, id reservation.ID) (*reservation.Reservation, error) {
	res, err := s.reservations.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == user.RoleAdmin || res.RenterID == actor.ID {
		return res, nil
	}
	space, err := s.catalog.ByID(ctx, res.SpaceID)
	if err == nil && string(space.OwnerID) == string(actor.ID) {
		return res, nil
	}
	return nil, ErrAccessDenied
}

func (s *Service) ListByRenter(ctx context.Context, renterID user.ID) ([]*reservation.Reservation, error) {
	return s.reservations.ListByRenter(ctx, renterID)
}

// ListBySpaceOwner gathers reservations across every space the owner lists,
// the feed behind the owner's booking-requests view.
func (s *Service) ListBySpaceOwner(ctx context.Context, ownerID user.ID) ([]*reservation.Reservation, error) {
	owned, err := s.catalog.ListByOwner(ctx, spaces.OwnerID(ownerID))
	if err != nil {
		return nil, err
	}
	var out []*reservation.Reservation
	for _, space := range owned {
		list, err := s.reservations.ListBySpace(ctx, space.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, list...)
	}
	return out, nil
}

func (s *Service) activeSpace(ctx context.Context, id spaces.SpaceID) (*spaces.ParkingSpace, error) {
	space, err := s.catalog.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !space.IsActive {
		return nil, spaces.ErrInactive
	}
	return space, nil
}

// requireSpaceOwner enforces that owner-gated transitions come from the
// actual owner of the space; admins pass unconditionally.
func (s *Service) requireSpaceOwner(ctx context.Context, actor user.Actor, spaceID spaces.SpaceID) error {
	if actor.Role == user.RoleAdmin {
		return nil
	}
	if actor.Role != user.RoleOwner {
		return reservation.ErrForbiddenTransition
	}
	space, err := s.catalog.ByID(ctx, spaceID)
	if err != nil {
		return err
	}
	if string(space.OwnerID) != string(actor.ID) {
		return ErrNotSpaceOwner
	}
	return nil
}

func (s *Service) buildReservation(space *spaces.ParkingSpace, renterID user.ID, window timerange.Range, recurring bool, groupID reservation.GroupID) (*reservation.Reservation, error) {
	price, err := s.pricing.Quote(space.HourlyRateCents, space.Currency, window)
	if err != nil {
		return nil, err
	}
	return reservation.New(reservation.CreateParams{
		ID:          reservation.ID(uuid.NewString()),
		SpaceID:     space.ID,
		RenterID:    renterID,
		Window:      window,
		Price:       price,
		IsRecurring: recurring,
		GroupID:     groupID,
		CreatedAt:   s.now(),
	})
}

// stageNew persists a reservation record and its index entry. The record is
// unwound when the index write fails, so a staged reservation is always
// either fully visible or absent.
func (s *Service) stageNew(ctx context.Context, res *reservation.Reservation) error {
	if err := s.reservations.Save(ctx, res); err != nil {
		return err
	}
	if err := s.index.Insert(ctx, res.SpaceID, availability.Entry{ReservationID: res.ID, Window: res.Window}); err != nil {
		s.discard(ctx, res)
		return fmt.Errorf("index reservation %s: %w", res.ID, err)
	}
	return nil
}

func (s *Service) commitNew(ctx context.Context, res *reservation.Reservation) error {
	if err := s.stageNew(ctx, res); err != nil {
		return err
	}
	if err := s.drainEvents(ctx, res); err != nil {
		s.discard(ctx, res)
		return err
	}
	return nil
}

// discard unwinds freshly staged reservations after a later step of their
// creation failed. It runs detached from the caller's context: a client
// disconnect mid-series must not leave half of it blocking the space.
func (s *Service) discard(ctx context.Context, staged ...*reservation.Reservation) {
	cleanup, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.lockTimeout)
	defer cancel()
	for _, res := range staged {
		if err := s.index.Remove(cleanup, res.SpaceID, res.ID); err != nil {
			s.logger.Error("discard left an index entry behind", "reservation_id", res.ID, "error", err)
		}
		if err := s.reservations.Delete(cleanup, res.ID); err != nil {
			s.logger.Error("discard left a reservation behind", "reservation_id", res.ID, "error", err)
		}
	}
}

func (s *Service) commitUpdate(ctx context.Context, res *reservation.Reservation) error {
	if err := s.reservations.Save(ctx, res); err != nil {
		return err
	}
	return s.drainEvents(ctx, res)
}

func (s *Service) drainEvents(ctx context.Context, res *reservation.Reservation) error {
	pending := res.PendingEvents()
	res.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, s.outbox, s.encoder, pending); err != nil {
		s.logger.Error("outbox append failed", "reservation_id", res.ID, "error", err)
		return err
	}
	return nil
}

func (s *Service) lockSpace(ctx context.Context, id spaces.SpaceID) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	return s.locks.acquire(lockCtx, id)
}

func (s *Service) lockSpaceOf(ctx context.Context, id reservation.ID) (func(), error) {
	res, err := s.reservations.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.lockSpace(ctx, res.SpaceID)
}
