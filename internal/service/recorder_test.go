package service

import (
	"context"
	"errors"
	"log/slog"
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

// fakeBackend serves a fixed opportunity list.
type fakeBackend struct {
	opps []domain.OpportunityRecord
	err  error
}

func (f *fakeBackend) Mode() domain.Mode { return domain.ModeDemo }

func (f *fakeBackend) Opportunities(ctx context.Context) ([]domain.OpportunityRecord, error) {
	return f.opps, f.err
}

func (f *fakeBackend) Prices(ctx context.Context) ([]domain.PriceRecord, error) {
	return nil, nil
}

func (f *fakeBackend) Stats(ctx context.Context) (domain.StatsResponse, error) {
	return domain.StatsResponse{}, nil
}

func (f *fakeBackend) Health(ctx context.Context) domain.Health { return domain.Health{} }

func (f *fakeBackend) Start(ctx context.Context) error         { return nil }
func (f *fakeBackend) Stop(ctx context.Context) error          { return nil }
func (f *fakeBackend) Pause(ctx context.Context) error         { return nil }
func (f *fakeBackend) Resume(ctx context.Context) error        { return nil }
func (f *fakeBackend) EmergencyStop(ctx context.Context) error { return nil }

// captureStore records inserts.
type captureStore struct {
	inserted []domain.OpportunityRecord
	modes    []domain.Mode
	err      error
}

func (s *captureStore) Insert(ctx context.Context, opp domain.OpportunityRecord, mode domain.Mode) error {
	if s.err != nil {
		return s.err
	}
	s.inserted = append(s.inserted, opp)
	s.modes = append(s.modes, mode)
	return nil
}

func (s *captureStore) ListRecent(ctx context.Context, limit int) ([]domain.OpportunityRecord, error) {
	return s.inserted, nil
}

func (s *captureStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func opp(id string, profit float64) domain.OpportunityRecord {
	o := domain.OpportunityRecord{ID: id, Timestamp: time.Now()}
	o.SetProfitPercentage(profit)
	return o
}

func TestRecorder_PersistsNewOpportunities(t *testing.T) {
	backend := &fakeBackend{opps: []domain.OpportunityRecord{opp("a", 1.2), opp("b", 2.8)}}
	store := &captureStore{}
	rec := NewRecorder(backend, store, nil, time.Second, testLogger())

	rec.sample(context.Background())

	require.Len(t, store.inserted, 2)
	assert.Equal(t, []domain.Mode{domain.ModeDemo, domain.ModeDemo}, store.modes)
}

func TestRecorder_DedupsAcrossSamples(t *testing.T) {
	backend := &fakeBackend{opps: []domain.OpportunityRecord{opp("a", 1.2)}}
	store := &captureStore{}
	rec := NewRecorder(backend, store, nil, time.Second, testLogger())

	ctx := context.Background()
	rec.sample(ctx)
	rec.sample(ctx)
	assert.Len(t, store.inserted, 1)

	// A new ID shows up; only it is recorded.
	backend.opps = append(backend.opps, opp("b", 3.0))
	rec.sample(ctx)
	require.Len(t, store.inserted, 2)
	assert.Equal(t, "b", store.inserted[1].ID)
}

func TestRecorder_BackendErrorSkipsCycle(t *testing.T) {
	backend := &fakeBackend{err: errors.New("backend down")}
	store := &captureStore{}
	rec := NewRecorder(backend, store, nil, time.Second, testLogger())

	rec.sample(context.Background())
	assert.Empty(t, store.inserted)
}

func TestRecorder_StoreFailureDoesNotStopSampling(t *testing.T) {
	backend := &fakeBackend{opps: []domain.OpportunityRecord{opp("a", 1.2)}}
	store := &captureStore{err: errors.New("insert failed")}
	rec := NewRecorder(backend, store, nil, time.Second, testLogger())

	ctx := context.Background()
	rec.sample(ctx)

	// The failed ID was still marked seen; repair the store and confirm new
	// records flow again.
	store.err = nil
	backend.opps = []domain.OpportunityRecord{opp("b", 2.0)}
	rec.sample(ctx)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, "b", store.inserted[0].ID)
}

func TestRecorder_RunStopsOnCancel(t *testing.T) {
	backend := &fakeBackend{}
	rec := NewRecorder(backend, &captureStore{}, nil, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := rec.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
