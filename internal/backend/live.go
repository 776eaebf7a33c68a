package backend

import (
	"context"
	"log/slog"
	"time"

	"github.com/lucasharte/arbot/internal/domain"
)

// AggregatorClient is the contract the live_api backend needs from the
// aggregation service. internal/platform/aggregator provides the HTTP
// implementation.
type AggregatorClient interface {
	Opportunities(ctx context.Context) ([]domain.OpportunityRecord, error)
	Prices(ctx context.Context) ([]domain.PriceRecord, error)
	Stats(ctx context.Context) (domain.StatsResponse, error)
	Health(ctx context.Context) (domain.Health, error)

	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	EmergencyStop(ctx context.Context) error
}

// priceCacheTTL bounds staleness of cached aggregator prices.
const priceCacheTTL = 10 * time.Second

// LiveAggregated delegates every facade call to the aggregation service.
// No local simulation runs in this mode. An optional price cache absorbs
// repeated reads and papers over short aggregator outages.
type LiveAggregated struct {
	client    AggregatorClient
	cache     domain.PriceCache // optional
	startedAt time.Time
	logger    *slog.Logger
}

// NewLiveAggregated creates the live_api backend. cache may be nil.
func NewLiveAggregated(client AggregatorClient, cache domain.PriceCache, logger *slog.Logger) *LiveAggregated {
	return &LiveAggregated{
		client:    client,
		cache:     cache,
		startedAt: time.Now(),
		logger:    logger.With(slog.String("component", "live_backend")),
	}
}

// Mode reports live_api.
func (l *LiveAggregated) Mode() domain.Mode { return domain.ModeLiveAPI }

// Opportunities passes through to the aggregator.
func (l *LiveAggregated) Opportunities(ctx context.Context) ([]domain.OpportunityRecord, error) {
	return l.client.Opportunities(ctx)
}

// Prices fetches from the aggregator and refreshes the cache. When the
// aggregator is unreachable it serves whatever the cache still holds.
func (l *LiveAggregated) Prices(ctx context.Context) ([]domain.PriceRecord, error) {
	prices, err := l.client.Prices(ctx)
	if err == nil {
		l.storeCached(ctx, prices)
		return prices, nil
	}
	if cached, ok := l.loadCached(ctx); ok {
		l.logger.WarnContext(ctx, "serving cached prices, aggregator unreachable",
			slog.String("error", err.Error()),
		)
		return cached, nil
	}
	return nil, err
}

func (l *LiveAggregated) storeCached(ctx context.Context, prices []domain.PriceRecord) {
	if l.cache == nil {
		return
	}
	for _, rec := range prices {
		if err := l.cache.SetPrice(ctx, rec.Symbol, rec, priceCacheTTL); err != nil {
			l.logger.WarnContext(ctx, "price cache write failed",
				slog.String("symbol", rec.Symbol),
				slog.String("error", err.Error()),
			)
			return
		}
	}
}

func (l *LiveAggregated) loadCached(ctx context.Context) ([]domain.PriceRecord, bool) {
	if l.cache == nil {
		return nil, false
	}
	cached, err := l.cache.GetPrices(ctx, nil)
	if err != nil || len(cached) == 0 {
		return nil, false
	}
	out := make([]domain.PriceRecord, 0, len(cached))
	for _, rec := range cached {
		out = append(out, rec)
	}
	return out, true
}

// Stats passes through, forcing the mode tag so the caller always sees the
// active backend regardless of what the aggregator reports.
func (l *LiveAggregated) Stats(ctx context.Context) (domain.StatsResponse, error) {
	stats, err := l.client.Stats(ctx)
	if err != nil {
		return domain.StatsResponse{}, err
	}
	stats.Mode = domain.ModeLiveAPI
	return stats, nil
}

// Health reports the aggregator's health under this backend's uptime. An
// unreachable aggregator degrades the response, it never errors.
func (l *LiveAggregated) Health(ctx context.Context) domain.Health {
	h := domain.Health{
		Status:     "healthy",
		Timestamp:  time.Now().UnixMilli(),
		Uptime:     time.Since(l.startedAt).Seconds(),
		Components: map[string]domain.ComponentHealth{},
	}

	remote, err := l.client.Health(ctx)
	if err != nil {
		h.Status = "degraded"
		h.Components["aggregator"] = domain.ComponentHealth{
			Status: "unreachable",
			Detail: err.Error(),
		}
		return h
	}

	h.Components["aggregator"] = domain.ComponentHealth{Status: remote.Status}
	for name, comp := range remote.Components {
		h.Components[name] = comp
	}
	if remote.Status != "healthy" && remote.Status != "ok" {
		h.Status = "degraded"
	}
	return h
}

// Trading controls pass through to the aggregator.
func (l *LiveAggregated) Start(ctx context.Context) error  { return l.client.Start(ctx) }
func (l *LiveAggregated) Stop(ctx context.Context) error   { return l.client.Stop(ctx) }
func (l *LiveAggregated) Pause(ctx context.Context) error  { return l.client.Pause(ctx) }
func (l *LiveAggregated) Resume(ctx context.Context) error { return l.client.Resume(ctx) }
func (l *LiveAggregated) EmergencyStop(ctx context.Context) error {
	return l.client.EmergencyStop(ctx)
}
