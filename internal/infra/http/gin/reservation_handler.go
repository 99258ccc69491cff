package ginserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"parkshare/internal/app/booking"
	"parkshare/internal/domain/availability"
	"parkshare/internal/domain/pricing"
	"parkshare/internal/domain/reservation"
	"parkshare/internal/domain/shared/timerange"
	"parkshare/internal/domain/spaces"
	domainuser "parkshare/internal/domain/user"
)

type ReservationHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Approve(c *gin.Context)
	Reject(c *gin.Context)
	Cancel(c *gin.Context)
	Complete(c *gin.Context)
	NoShow(c *gin.Context)
	PaymentStatus(c *gin.Context)
	ListMine(c *gin.Context)
	ListOwnerRequests(c *gin.Context)
}

type ReservationHandler struct {
	Service     *booking.Service
	Idempotency booking.IdempotencyStore
	Logger      *slog.Logger
}

type createReservationRequest struct {
	SpaceID   string            `json:"space_id"`
	Start     time.Time         `json:"start"`
	End       time.Time         `json:"end"`
	Recurring *recurringRequest `json:"recurring,omitempty"`
}

type recurringRequest struct {
	Weekdays    []string `json:"weekdays"`
	FirstDay    string   `json:"first_day"`
	LastDay     string   `json:"last_day"`
	StartMinute int      `json:"start_minute"`
	EndMinute   int      `json:"end_minute"`
}

type reservationResponse struct {
	ID                 string    `json:"id"`
	SpaceID            string    `json:"space_id"`
	RenterID           string    `json:"renter_id"`
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
	Status             string    `json:"status"`
	PaymentStatus      string    `json:"payment_status"`
	Currency           string    `json:"currency"`
	TotalCents         int64     `json:"total_cents"`
	PlatformFeeCents   int64     `json:"platform_fee_cents"`
	OwnerEarningsCents int64     `json:"owner_earnings_cents"`
	IsRecurring        bool      `json:"is_recurring"`
	GroupID            string    `json:"recurring_group_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (h ReservationHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c, "")
	if !ok {
		return
	}
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Recurring != nil {
		h.createRecurring(c, actor, req)
		return
	}

	key := c.GetHeader("Idempotency-Key")
	if existing, ok := h.replayIdempotent(c, actor, key); ok {
		c.JSON(http.StatusOK, newReservationResponse(existing))
		return
	}
	if c.IsAborted() {
		return
	}

	res, err := h.Service.Create(c.Request.Context(), actor, spaces.SpaceID(req.SpaceID), req.Start, req.End)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.rememberIdempotent(c, key, res.ID)
	c.JSON(http.StatusCreated, newReservationResponse(res))
}

func (h ReservationHandler) createRecurring(c *gin.Context, actor domainuser.Actor, req createReservationRequest) {
	spec, err := req.Recurring.toSpec()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	series, err := h.Service.CreateRecurring(c.Request.Context(), actor, spaces.SpaceID(req.SpaceID), spec)
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]reservationResponse, 0, len(series))
	for _, res := range series {
		out = append(out, newReservationResponse(res))
	}
	c.JSON(http.StatusCreated, gin.H{
		"recurring_group_id": out[0].GroupID,
		"occurrences":        out,
	})
}

// replayIdempotent returns the reservation a previous request with the same
// key produced. A key that resolves to a reservation the actor cannot read
// aborts the request instead of leaking another renter's booking.
func (h ReservationHandler) replayIdempotent(c *gin.Context, actor domainuser.Actor, key string) (*reservation.Reservation, bool) {
	if key == "" || h.Idempotency == nil {
		return nil, false
	}
	rec, found, err := h.Idempotency.Get(c.Request.Context(), key)
	if err != nil || !found {
		return nil, false
	}
	res, err := h.Service.ByID(c.Request.Context(), actor, rec.ReservationID)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "idempotency key already used"})
		c.Abort()
		return nil, false
	}
	return res, true
}

func (h ReservationHandler) rememberIdempotent(c *gin.Context, key string, id reservation.ID) {
	if key == "" || h.Idempotency == nil {
		return
	}
	rec := booking.IdempotencyRecord{Key: key, ReservationID: id, CreatedAt: time.Now().UTC()}
	if err := h.Idempotency.Save(c.Request.Context(), rec); err != nil && h.Logger != nil {
		h.Logger.Warn("idempotency record save failed", "key", key, "error", err)
	}
}

func (h ReservationHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c, "")
	if !ok {
		return
	}
	res, err := h.Service.ByID(c.Request.Context(), actor, reservation.ID(c.Param("id")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReservationResponse(res))
}

func (h ReservationHandler) Approve(c *gin.Context) {
	h.transition(c, h.Service.Approve)
}

func (h ReservationHandler) Reject(c *gin.Context) {
	h.transition(c, h.Service.Reject)
}

func (h ReservationHandler) Cancel(c *gin.Context) {
	h.transition(c, h.Service.Cancel)
}

func (h ReservationHandler) Complete(c *gin.Context) {
	h.transition(c, h.Service.Complete)
}

func (h ReservationHandler) NoShow(c *gin.Context) {
	h.transition(c, h.Service.MarkNoShow)
}

type transitionFunc func(ctx context.Context, actor domainuser.Actor, id reservation.ID) (*reservation.Reservation, error)

func (h ReservationHandler) transition(c *gin.Context, op transitionFunc) {
	actor, ok := requireActor(c, "")
	if !ok {
		return
	}
	res, err := op(c.Request.Context(), actor, reservation.ID(c.Param("id")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReservationResponse(res))
}

type paymentStatusRequest struct {
	Status string `json:"status"`
}

func (h ReservationHandler) PaymentStatus(c *gin.Context) {
	actor, ok := requireActor(c, domainuser.RoleAdmin)
	if !ok {
		return
	}
	var req paymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := reservation.PaymentStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	res, err := h.Service.MarkPaymentStatus(c.Request.Context(), actor, reservation.ID(c.Param("id")), status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReservationResponse(res))
}

func (h ReservationHandler) ListMine(c *gin.Context) {
	actor, ok := requireActor(c, "")
	if !ok {
		return
	}
	list, err := h.Service.ListByRenter(c.Request.Context(), actor.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReservationListResponse(list))
}

func (h ReservationHandler) ListOwnerRequests(c *gin.Context) {
	actor, ok := requireActor(c, domainuser.RoleOwner)
	if !ok {
		return
	}
	list, err := h.Service.ListBySpaceOwner(c.Request.Context(), actor.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReservationListResponse(list))
}

func (h ReservationHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, timerange.ErrInvalidRange),
		errors.Is(err, reservation.ErrInvalidRecurringSpec),
		errors.Is(err, reservation.ErrEmptyRecurringSpec),
		errors.Is(err, reservation.ErrTooManyOccurrences),
		errors.Is(err, reservation.ErrInvalidPaymentStatus),
		errors.Is(err, pricing.ErrInvalidRate),
		errors.Is(err, pricing.ErrCurrencyUnset):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrNotSpaceOwner),
		errors.Is(err, booking.ErrNotReservationRenter),
		errors.Is(err, booking.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrNotFound),
		errors.Is(err, spaces.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, availability.ErrConflict),
		errors.Is(err, reservation.ErrForbiddenTransition),
		errors.Is(err, reservation.ErrIntervalNotElapsed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, spaces.ErrInactive):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrLockTimeout):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("reservation operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (r *recurringRequest) toSpec() (reservation.RecurringSpec, error) {
	spec := reservation.RecurringSpec{
		StartMinute: r.StartMinute,
		EndMinute:   r.EndMinute,
	}
	for _, name := range r.Weekdays {
		wd, err := parseWeekday(name)
		if err != nil {
			return reservation.RecurringSpec{}, err
		}
		spec.Weekdays = append(spec.Weekdays, wd)
	}
	var err error
	if spec.FirstDay, err = time.Parse(time.DateOnly, r.FirstDay); err != nil {
		return reservation.RecurringSpec{}, fmt.Errorf("invalid first_day: %w", err)
	}
	if spec.LastDay, err = time.Parse(time.DateOnly, r.LastDay); err != nil {
		return reservation.RecurringSpec{}, fmt.Errorf("invalid last_day: %w", err)
	}
	return spec, nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(name string) (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday: %q", name)
	}
	return wd, nil
}

func newReservationResponse(res *reservation.Reservation) reservationResponse {
	return reservationResponse{
		ID:                 string(res.ID),
		SpaceID:            string(res.SpaceID),
		RenterID:           string(res.RenterID),
		Start:              res.Window.Start,
		End:                res.Window.End,
		Status:             string(res.Status),
		PaymentStatus:      string(res.PaymentStatus),
		Currency:           res.Price.Total.Currency,
		TotalCents:         res.Price.Total.Cents,
		PlatformFeeCents:   res.Price.PlatformFee.Cents,
		OwnerEarningsCents: res.Price.OwnerEarnings.Cents,
		IsRecurring:        res.IsRecurring,
		GroupID:            string(res.GroupID),
		CreatedAt:          res.CreatedAt,
		UpdatedAt:          res.UpdatedAt,
	}
}

func newReservationListResponse(list []*reservation.Reservation) gin.H {
	out := make([]reservationResponse, 0, len(list))
	for _, res := range list {
		out = append(out, newReservationResponse(res))
	}
	return gin.H{"reservations": out}
}

var _ ReservationHTTP = ReservationHandler{}
