package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var ErrSweeperNotConfigured = errors.New("booking: sweeper missing dependencies")

// Sweeper periodically advances time-dependent reservation state. It plays
// the role of the external scheduler invoking SweepCompletions.
type Sweeper struct {
	Service  *Service
	Interval time.Duration
	Logger   *slog.Logger
}

func (w *Sweeper) Run(ctx context.Context) error {
	if w.Service == nil {
		return ErrSweeperNotConfigured
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Service.SweepCompletions(ctx, time.Now()); err != nil {
				if w.Logger != nil {
					w.Logger.Error("completion sweep failed", "error", err)
				}
			}
		}
	}
}

func (w *Sweeper) interval() time.Duration {
	if w.Interval <= 0 {
		return time.Minute
	}
	return w.Interval
}
