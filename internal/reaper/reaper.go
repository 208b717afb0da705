// Package reaper removes expired refresh tokens on a fixed schedule. It is
// storage hygiene only: rotation performs its own lazy expiry check, so the
// sweep bounds table growth without affecting correctness.
package reaper

import (
	"context"
	"log/slog"
	"time"
)

// Store is the single store operation the reaper needs. The implementation
// bounds the sweep with its own statement timeout.
type Store interface {
	DeleteExpiredBefore(instant time.Time) (int64, error)
}

type Reaper struct {
	store    Store
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func New(store Store, interval time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{
		store:    store,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run sweeps on every tick until ctx is cancelled. It runs on its own
// goroutine, off the request-serving path; sweep failures are logged and
// never propagate.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reaper started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper stopped")
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep deletes every refresh token that expired before now. Safe to race
// with concurrent sweeps and with lazy deletion during rotation: deleting
// by expiry is idempotent.
func (r *Reaper) Sweep() {
	start := r.now()

	deleted, err := r.store.DeleteExpiredBefore(start)
	if err != nil {
		r.logger.Error("reaper sweep failed", "error", err)
		return
	}
	r.logger.Info("reaper sweep finished", "deleted", deleted, "took", time.Since(start))
}
