package booking

import (
	"context"
	"time"

	"parkshare/internal/domain/reservation"
)

// IdempotencyRecord remembers which reservation a create request produced so
// a retried request with the same key returns the original result instead of
// booking twice.
type IdempotencyRecord struct {
	Key           string
	ReservationID reservation.ID
	CreatedAt     time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}
