package sim

import (
	"context"
	"log/slog"
	"time"
)

// defaultTickInterval is the simulated market's update cadence.
const defaultTickInterval = 3 * time.Second

// Loop drives MarketState.Tick on a fixed interval from a single goroutine,
// so ticks can never overlap: a tick that runs long simply delays the next
// one, it is never run concurrently with it.
type Loop struct {
	state    *MarketState
	interval time.Duration
	logger   *slog.Logger
}

// NewLoop creates a tick loop for state. A non-positive interval falls back
// to the 3s default.
func NewLoop(state *MarketState, interval time.Duration, logger *slog.Logger) *Loop {
	if interval <= 0 {
		interval = defaultTickInterval
	}
	return &Loop{
		state:    state,
		interval: interval,
		logger:   logger.With(slog.String("component", "sim_loop")),
	}
}

// Run ticks until ctx is cancelled. A tick error is fatal to the loop: the
// only tick failure mode is a precondition violation, which is a
// programming error and not retried.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.InfoContext(ctx, "simulation loop starting",
		slog.Duration("interval", l.interval),
	)

	for {
		select {
		case <-ctx.Done():
			l.logger.InfoContext(ctx, "simulation loop stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := l.state.Tick(); err != nil {
				l.logger.ErrorContext(ctx, "tick failed",
					slog.String("error", err.Error()),
				)
				return err
			}
		}
	}
}
