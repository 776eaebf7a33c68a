package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasharte/arbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeBackend implements domain.Backend with canned data.
type fakeBackend struct {
	mode       domain.Mode
	opps       []domain.OpportunityRecord
	oppsErr    error
	prices     []domain.PriceRecord
	stats      domain.StatsResponse
	statsErr   error
	controlErr error
}

func (f *fakeBackend) Mode() domain.Mode { return f.mode }

func (f *fakeBackend) Opportunities(ctx context.Context) ([]domain.OpportunityRecord, error) {
	return f.opps, f.oppsErr
}

func (f *fakeBackend) Prices(ctx context.Context) ([]domain.PriceRecord, error) {
	return f.prices, nil
}

func (f *fakeBackend) Stats(ctx context.Context) (domain.StatsResponse, error) {
	return f.stats, f.statsErr
}

func (f *fakeBackend) Health(ctx context.Context) domain.Health {
	return domain.Health{
		Status:     "healthy",
		Timestamp:  time.Now().UnixMilli(),
		Components: map[string]domain.ComponentHealth{"simulator": {Status: "ok"}},
	}
}

func (f *fakeBackend) Start(ctx context.Context) error         { return f.controlErr }
func (f *fakeBackend) Stop(ctx context.Context) error          { return f.controlErr }
func (f *fakeBackend) Pause(ctx context.Context) error         { return f.controlErr }
func (f *fakeBackend) Resume(ctx context.Context) error        { return f.controlErr }
func (f *fakeBackend) EmergencyStop(ctx context.Context) error { return f.controlErr }

func demoOpportunity(id string, profit float64) domain.OpportunityRecord {
	opp := domain.OpportunityRecord{
		ID:             id,
		TokenA:         "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		TokenB:         "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		AmountIn:       "2.50",
		ExpectedProfit: "0.031250",
		GasEstimate:    "0.015000",
		Timestamp:      time.Now(),
	}
	opp.SetProfitPercentage(profit)
	return opp
}

func TestHealthCheck(t *testing.T) {
	h := NewHealthHandler(&fakeBackend{mode: domain.ModeDemo})

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body domain.Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Contains(t, body.Components, "simulator")
}

func TestListOpportunities(t *testing.T) {
	backend := &fakeBackend{
		mode: domain.ModeDemo,
		opps: []domain.OpportunityRecord{
			demoOpportunity("opp-1", 3.2),
			demoOpportunity("opp-2", 1.7),
		},
	}
	h := NewMarketHandler(backend, testLogger())

	rec := httptest.NewRecorder()
	h.ListOpportunities(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Opportunities []domain.OpportunityRecord `json:"opportunities"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Opportunities, 2)
	assert.Equal(t, "opp-1", body.Opportunities[0].ID)
	assert.Equal(t, 32, body.Opportunities[0].Priority)
	assert.Equal(t, 17, body.Opportunities[1].Priority)
}

func TestListOpportunities_NilSliceBecomesEmptyArray(t *testing.T) {
	h := NewMarketHandler(&fakeBackend{mode: domain.ModeLive}, testLogger())

	rec := httptest.NewRecorder()
	h.ListOpportunities(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"opportunities":[]}`, rec.Body.String())
}

func TestListOpportunities_BackendNotInitialized(t *testing.T) {
	h := NewMarketHandler(&fakeBackend{oppsErr: domain.ErrNotInitialized}, testLogger())

	rec := httptest.NewRecorder()
	h.ListOpportunities(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"not initialized"}`, rec.Body.String())
}

func TestListOpportunities_UnexpectedErrorIsOpaque(t *testing.T) {
	h := NewMarketHandler(&fakeBackend{oppsErr: errors.New("pgx: connection reset")}, testLogger())

	rec := httptest.NewRecorder()
	h.ListOpportunities(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pgx", "internal details must not leak")
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestGetStats_CarriesMode(t *testing.T) {
	h := NewMarketHandler(&fakeBackend{
		stats: domain.StatsResponse{
			Mode:          domain.ModeDemo,
			WalletBalance: "7.123456",
		},
	}, testLogger())

	rec := httptest.NewRecorder()
	h.GetStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "demo", body["mode"])
	assert.Equal(t, "7.123456", body["walletBalance"])
}

func TestTradingControls_MissingCapabilityIs400(t *testing.T) {
	// Both sentinels mean the backend cannot trade right now; callers see
	// the same 400 either way.
	for name, sentinel := range map[string]error{
		"not initialized": domain.ErrNotInitialized,
		"not available":   domain.ErrNotAvailable,
	} {
		backend := &fakeBackend{mode: domain.ModeDemo, controlErr: sentinel}
		h := NewTradingHandler(backend, testLogger())

		endpoints := map[string]http.HandlerFunc{
			"/api/start":          h.Start,
			"/api/stop":           h.Stop,
			"/api/pause":          h.Pause,
			"/api/resume":         h.Resume,
			"/api/emergency-stop": h.EmergencyStop,
		}
		for path, fn := range endpoints {
			rec := httptest.NewRecorder()
			fn(rec, httptest.NewRequest(http.MethodPost, path, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code, "%s/%s", name, path)
			assert.JSONEq(t, `{"error":"not initialized"}`, rec.Body.String(), "%s/%s", name, path)
		}
	}
}

func TestTradingControls_Success(t *testing.T) {
	h := NewTradingHandler(&fakeBackend{mode: domain.ModeLiveAPI}, testLogger())

	rec := httptest.NewRecorder()
	h.Start(rec, httptest.NewRequest(http.MethodPost, "/api/start", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "start", body["action"])
	assert.Equal(t, "live_api", body["mode"])
}

// fakeStore implements domain.OpportunityStore in memory.
type fakeStore struct {
	opps []domain.OpportunityRecord
	err  error
}

func (f *fakeStore) Insert(ctx context.Context, opp domain.OpportunityRecord, mode domain.Mode) error {
	f.opps = append(f.opps, opp)
	return f.err
}

func (f *fakeStore) ListRecent(ctx context.Context, limit int) ([]domain.OpportunityRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > len(f.opps) {
		limit = len(f.opps)
	}
	return f.opps[:limit], nil
}

func (f *fakeStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, f.err
}

func TestHistory_NotConfigured(t *testing.T) {
	h := NewHistoryHandler(nil, testLogger())

	rec := httptest.NewRecorder()
	h.ListRecent(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities/history", nil))

	require.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHistory_LimitBounds(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < 80; i++ {
		store.opps = append(store.opps, demoOpportunity("opp", 1.0))
	}
	h := NewHistoryHandler(store, testLogger())

	t.Run("default limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ListRecent(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities/history", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Opportunities []domain.OpportunityRecord `json:"opportunities"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Len(t, body.Opportunities, 50)
	})

	t.Run("explicit limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ListRecent(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities/history?limit=10", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Opportunities []domain.OpportunityRecord `json:"opportunities"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Len(t, body.Opportunities, 10)
	})
}
