package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lucasharte/arbot/internal/domain"
)

// defaultArchiveInterval is how often a snapshot is uploaded.
const defaultArchiveInterval = time.Hour

// Archiver periodically uploads a JSON snapshot of the recent opportunity
// history to object storage and prunes rows older than the retention
// window. It only runs when both a store and a blob writer are configured.
type Archiver struct {
	store     domain.OpportunityStore
	blob      domain.BlobWriter
	interval  time.Duration
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewArchiver creates an Archiver. Non-positive interval or retention fall
// back to one hour and seven days respectively.
func NewArchiver(
	store domain.OpportunityStore,
	blob domain.BlobWriter,
	interval, retention time.Duration,
	logger *slog.Logger,
) *Archiver {
	if interval <= 0 {
		interval = defaultArchiveInterval
	}
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	return &Archiver{
		store:     store,
		blob:      blob,
		interval:  interval,
		retention: retention,
		logger:    logger.With(slog.String("component", "archiver")),
		now:       time.Now,
	}
}

// Run archives until ctx is cancelled. Upload failures are logged, never
// fatal; the rows stay in the database for the next attempt.
func (a *Archiver) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.InfoContext(ctx, "archiver starting",
		slog.Duration("interval", a.interval),
		slog.Duration("retention", a.retention),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.archiveOnce(ctx); err != nil {
				a.logger.WarnContext(ctx, "archive cycle failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

func (a *Archiver) archiveOnce(ctx context.Context) error {
	opps, err := a.store.ListRecent(ctx, 1000)
	if err != nil {
		return fmt.Errorf("service: archive list: %w", err)
	}
	if len(opps) == 0 {
		return nil
	}

	payload, err := json.Marshal(struct {
		ArchivedAt    time.Time                  `json:"archivedAt"`
		Opportunities []domain.OpportunityRecord `json:"opportunities"`
	}{
		ArchivedAt:    a.now().UTC(),
		Opportunities: opps,
	})
	if err != nil {
		return fmt.Errorf("service: archive encode: %w", err)
	}

	path := fmt.Sprintf("opportunities/%s.json", a.now().UTC().Format("2006/01/02/150405"))
	if err := a.blob.Put(ctx, path, bytes.NewReader(payload), "application/json"); err != nil {
		return fmt.Errorf("service: archive upload: %w", err)
	}

	pruned, err := a.store.DeleteBefore(ctx, a.now().Add(-a.retention))
	if err != nil {
		return fmt.Errorf("service: archive prune: %w", err)
	}

	a.logger.InfoContext(ctx, "archive uploaded",
		slog.String("path", path),
		slog.Int("records", len(opps)),
		slog.Int64("pruned", pruned),
	)
	return nil
}
