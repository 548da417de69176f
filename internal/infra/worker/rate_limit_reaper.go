package worker

import (
	"context"
	"time"

	"github.com/xavierca1/leadreach/internal/logging"
)

// WindowSweeper resets an expired rate-limit window. usecase.RateLimiter implements it.
type WindowSweeper interface {
	Sweep(ctx context.Context) (bool, error)
}

// RateLimitReaper keeps the persisted rate-limit window from going stale
// while no requests arrive, so status reads from other processes see the reset.
type RateLimitReaper struct {
	sweeper      WindowSweeper
	tickInterval time.Duration
}

func NewRateLimitReaper(sweeper WindowSweeper, tickInterval time.Duration) *RateLimitReaper {
	if tickInterval <= 0 {
		tickInterval = time.Minute
	}
	return &RateLimitReaper{sweeper: sweeper, tickInterval: tickInterval}
}

// Serve sweeps once, then on every tick until ctx is done.
func (w *RateLimitReaper) Serve(ctx context.Context) error {
	logging.Info().Dur("interval", w.tickInterval).Msg("rate limit reaper started")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("rate limit reaper stopped")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *RateLimitReaper) String() string { return "rate-limit-reaper" }

func (w *RateLimitReaper) sweep(ctx context.Context) {
	reset, err := w.sweeper.Sweep(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logging.Error().Err(err).Msg("failed to sweep rate limit window")
		}
		return
	}
	if reset {
		logging.Info().Msg("rate limit window expired, quota restored")
	}
}
