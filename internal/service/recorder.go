// Package service holds the background services that run alongside the API
// server: the opportunity recorder and the snapshot archiver.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/lucasharte/arbot/internal/domain"
	"github.com/lucasharte/arbot/internal/notify"
)

// defaultRecordInterval is how often the recorder samples the backend.
const defaultRecordInterval = 15 * time.Second

// Recorder periodically samples the active backend's opportunity set,
// persists records it has not seen before, and raises operator alerts for
// high-profit ones. Store and notifier are both optional; with neither the
// recorder is not started.
type Recorder struct {
	backend  domain.Backend
	store    domain.OpportunityStore // optional
	notifier *notify.Notifier        // optional
	interval time.Duration
	seen     map[string]struct{}
	logger   *slog.Logger
}

// NewRecorder creates a Recorder. A non-positive interval falls back to the
// 15s default.
func NewRecorder(
	backend domain.Backend,
	store domain.OpportunityStore,
	notifier *notify.Notifier,
	interval time.Duration,
	logger *slog.Logger,
) *Recorder {
	if interval <= 0 {
		interval = defaultRecordInterval
	}
	return &Recorder{
		backend:  backend,
		store:    store,
		notifier: notifier,
		interval: interval,
		seen:     make(map[string]struct{}),
		logger:   logger.With(slog.String("component", "recorder")),
	}
}

// Run samples until ctx is cancelled. Sampling failures are logged and the
// next cycle tried; the recorder never takes the process down.
func (r *Recorder) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.InfoContext(ctx, "recorder starting",
		slog.Duration("interval", r.interval),
		slog.Bool("store", r.store != nil),
		slog.Bool("notifier", r.notifier != nil),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.sample(ctx)
		}
	}
}

func (r *Recorder) sample(ctx context.Context) {
	opps, err := r.backend.Opportunities(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "sampling opportunities failed",
			slog.String("error", err.Error()),
		)
		return
	}

	mode := r.backend.Mode()
	for _, opp := range opps {
		if _, ok := r.seen[opp.ID]; ok {
			continue
		}
		r.seen[opp.ID] = struct{}{}

		if r.store != nil {
			if err := r.store.Insert(ctx, opp, mode); err != nil {
				r.logger.WarnContext(ctx, "recording opportunity failed",
					slog.String("id", opp.ID),
					slog.String("error", err.Error()),
				)
			}
		}
		if r.notifier != nil {
			if err := r.notifier.NotifyOpportunity(ctx, opp); err != nil {
				r.logger.WarnContext(ctx, "opportunity alert failed",
					slog.String("id", opp.ID),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	// The seen set only grows; cap it so a long-lived process does not leak.
	if len(r.seen) > 100_000 {
		r.seen = make(map[string]struct{})
	}
}
