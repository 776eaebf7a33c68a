package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasharte/arbot/internal/domain"
)

// stubAggregator implements AggregatorClient with canned responses.
type stubAggregator struct {
	prices    []domain.PriceRecord
	pricesErr error
	stats     domain.StatsResponse
	health    domain.Health
	healthErr error
	controls  []string
}

func (s *stubAggregator) Opportunities(ctx context.Context) ([]domain.OpportunityRecord, error) {
	return []domain.OpportunityRecord{}, nil
}

func (s *stubAggregator) Prices(ctx context.Context) ([]domain.PriceRecord, error) {
	return s.prices, s.pricesErr
}

func (s *stubAggregator) Stats(ctx context.Context) (domain.StatsResponse, error) {
	return s.stats, nil
}

func (s *stubAggregator) Health(ctx context.Context) (domain.Health, error) {
	return s.health, s.healthErr
}

func (s *stubAggregator) Start(ctx context.Context) error {
	s.controls = append(s.controls, "start")
	return nil
}
func (s *stubAggregator) Stop(ctx context.Context) error {
	s.controls = append(s.controls, "stop")
	return nil
}
func (s *stubAggregator) Pause(ctx context.Context) error {
	s.controls = append(s.controls, "pause")
	return nil
}
func (s *stubAggregator) Resume(ctx context.Context) error {
	s.controls = append(s.controls, "resume")
	return nil
}
func (s *stubAggregator) EmergencyStop(ctx context.Context) error {
	s.controls = append(s.controls, "emergency-stop")
	return nil
}

// memPriceCache is an in-memory domain.PriceCache for tests.
type memPriceCache struct {
	records map[string]domain.PriceRecord
}

func newMemPriceCache() *memPriceCache {
	return &memPriceCache{records: make(map[string]domain.PriceRecord)}
}

func (c *memPriceCache) SetPrice(ctx context.Context, symbol string, rec domain.PriceRecord, ttl time.Duration) error {
	c.records[symbol] = rec
	return nil
}

func (c *memPriceCache) GetPrices(ctx context.Context, symbols []string) (map[string]domain.PriceRecord, error) {
	out := make(map[string]domain.PriceRecord, len(c.records))
	if symbols == nil {
		for k, v := range c.records {
			out[k] = v
		}
		return out, nil
	}
	for _, s := range symbols {
		if rec, ok := c.records[s]; ok {
			out[s] = rec
		}
	}
	return out, nil
}

func TestLiveAggregated_Mode(t *testing.T) {
	b := NewLiveAggregated(&stubAggregator{}, nil, testLogger())
	assert.Equal(t, domain.ModeLiveAPI, b.Mode())
}

func TestLiveAggregated_PricesServedFromCacheOnOutage(t *testing.T) {
	cache := newMemPriceCache()
	agg := &stubAggregator{
		prices: []domain.PriceRecord{
			{Symbol: "WETH", Price: 2456.78, Timestamp: 1},
			{Symbol: "DAI", Price: 0.9998, Timestamp: 1},
		},
	}
	b := NewLiveAggregated(agg, cache, testLogger())
	ctx := context.Background()

	// Healthy fetch populates the cache.
	prices, err := b.Prices(ctx)
	require.NoError(t, err)
	assert.Len(t, prices, 2)
	assert.Len(t, cache.records, 2)

	// Outage: cached records are served instead of the error.
	agg.pricesErr = errors.New("aggregator down")
	prices, err = b.Prices(ctx)
	require.NoError(t, err)
	assert.Len(t, prices, 2)

	// Outage with a cold cache surfaces the error.
	cold := NewLiveAggregated(agg, newMemPriceCache(), testLogger())
	_, err = cold.Prices(ctx)
	assert.Error(t, err)
}

func TestLiveAggregated_StatsForcesMode(t *testing.T) {
	agg := &stubAggregator{
		stats: domain.StatsResponse{Mode: domain.ModeDemo}, // aggregator lies
	}
	b := NewLiveAggregated(agg, nil, testLogger())

	stats, err := b.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ModeLiveAPI, stats.Mode)
}

func TestLiveAggregated_HealthDegradedWhenUnreachable(t *testing.T) {
	agg := &stubAggregator{healthErr: errors.New("connection refused")}
	b := NewLiveAggregated(agg, nil, testLogger())

	h := b.Health(context.Background())
	assert.Equal(t, "degraded", h.Status)
	assert.Equal(t, "unreachable", h.Components["aggregator"].Status)
}

func TestLiveAggregated_ControlsPassThrough(t *testing.T) {
	agg := &stubAggregator{}
	b := NewLiveAggregated(agg, nil, testLogger())
	ctx := context.Background()

	require.NoError(t, b.Start(ctx))
	require.NoError(t, b.Stop(ctx))
	require.NoError(t, b.Pause(ctx))
	require.NoError(t, b.Resume(ctx))
	require.NoError(t, b.EmergencyStop(ctx))

	assert.Equal(t, []string{"start", "stop", "pause", "resume", "emergency-stop"}, agg.controls)
}
