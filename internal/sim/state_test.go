package sim

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasharte/arbot/internal/domain"
)

func newTestState(t *testing.T, cfg Config, seed int64) *MarketState {
	t.Helper()
	state := NewMarketState(cfg, rand.New(rand.NewSource(seed)), nil)
	require.NoError(t, state.Initialize(domain.DefaultCatalog()))
	return state
}

func TestMarketState_InitializeSeedsFromCatalog(t *testing.T) {
	state := newTestState(t, Config{}, 1)
	catalog := domain.DefaultCatalog()

	prices, opps := state.Snapshot()
	require.Len(t, prices, len(catalog.Tokens))
	for _, tok := range catalog.Tokens {
		rec, ok := prices[tok.Symbol]
		require.True(t, ok, "missing price for %s", tok.Symbol)
		assert.Equal(t, tok.BaselinePrice, rec.Price)
		assert.Equal(t, "simulated", rec.Source)
		assert.Positive(t, rec.Timestamp)
		assert.Positive(t, rec.Volume24h)
	}

	assert.GreaterOrEqual(t, len(opps), 3)
	assert.LessOrEqual(t, len(opps), 5)
}

func TestMarketState_DoubleInitializeFails(t *testing.T) {
	state := newTestState(t, Config{}, 1)
	assert.Error(t, state.Initialize(domain.DefaultCatalog()))
}

func TestMarketState_TickBeforeInitialize(t *testing.T) {
	state := NewMarketState(Config{}, rand.New(rand.NewSource(1)), nil)
	err := state.Tick()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestMarketState_TickPerturbsWithinOnePercent(t *testing.T) {
	state := newTestState(t, Config{}, 2)

	before, _ := state.Snapshot()
	require.NoError(t, state.Tick())
	after, _ := state.Snapshot()

	for sym, prev := range before {
		next := after[sym]
		assert.GreaterOrEqual(t, next.Price, prev.Price*0.99, "%s moved below -1%%", sym)
		assert.LessOrEqual(t, next.Price, prev.Price*1.01, "%s moved above +1%%", sym)
		assert.InDelta(t, prev.Change24h, next.Change24h, 0.05)
		assert.Greater(t, next.Timestamp, prev.Timestamp)
	}
}

func TestMarketState_TimestampsStrictlyMonotonic(t *testing.T) {
	state := newTestState(t, Config{}, 3)

	// Freeze the clock: successive ticks within the same millisecond must
	// still advance every timestamp.
	frozen := time.Now()
	state.now = func() time.Time { return frozen }

	prev, _ := state.Snapshot()
	for i := 0; i < 10; i++ {
		require.NoError(t, state.Tick())
		next, _ := state.Snapshot()
		for sym := range prev {
			assert.Greater(t, next[sym].Timestamp, prev[sym].Timestamp, "tick %d symbol %s", i, sym)
		}
		prev = next
	}
}

func TestMarketState_PricesStayPositive(t *testing.T) {
	state := newTestState(t, Config{}, 4)

	for i := 0; i < 500; i++ {
		require.NoError(t, state.Tick())
	}

	prices, _ := state.Snapshot()
	for sym, rec := range prices {
		assert.Positive(t, rec.Price, "%s collapsed to zero", sym)
	}
}

func TestMarketState_ForcedEvictionFloorsAtZero(t *testing.T) {
	// Eviction on every tick, regeneration never. A negative probability can
	// never be drawn, so the list must drain to empty and stay there.
	state := newTestState(t, Config{EvictProbability: 1.0, RegenProbability: -1}, 5)

	for i := 0; i < 100; i++ {
		require.NoError(t, state.Tick())
		assert.GreaterOrEqual(t, state.OpportunityCount(), 0)
	}
	assert.Equal(t, 0, state.OpportunityCount())
}

func TestMarketState_RegenerationReplacesBatch(t *testing.T) {
	// Eviction and regeneration both certain: after every tick the list is a
	// fresh batch of 3 to 5 records.
	state := newTestState(t, Config{EvictProbability: 1.0, RegenProbability: 1.0}, 6)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		require.NoError(t, state.Tick())
		_, opps := state.Snapshot()
		require.GreaterOrEqual(t, len(opps), 3)
		require.LessOrEqual(t, len(opps), 5)
		for _, opp := range opps {
			seen[opp.ID] = true
		}
	}
	assert.Greater(t, len(seen), 5, "batches should turn over across ticks")
}

func TestMarketState_SnapshotSortedAndDetached(t *testing.T) {
	state := newTestState(t, Config{}, 7)

	_, opps := state.Snapshot()
	for i := 1; i < len(opps); i++ {
		assert.GreaterOrEqual(t, opps[i-1].ProfitPercentage, opps[i].ProfitPercentage,
			"opportunities must be sorted by profit descending")
	}

	// Mutating the returned copies must not leak into internal state.
	prices, _ := state.Snapshot()
	for sym := range prices {
		rec := prices[sym]
		rec.Price = -1
		prices[sym] = rec
	}
	if len(opps) > 0 {
		opps[0].ProfitPercentage = -100
	}

	freshPrices, freshOpps := state.Snapshot()
	for _, rec := range freshPrices {
		assert.Positive(t, rec.Price)
	}
	for _, opp := range freshOpps {
		assert.Positive(t, opp.ProfitPercentage)
	}
}

func TestMarketState_TickPublishesUpdates(t *testing.T) {
	b := NewBroadcaster(testLogger())
	state := NewMarketState(Config{}, rand.New(rand.NewSource(8)), b)
	require.NoError(t, state.Initialize(domain.DefaultCatalog()))

	var updates []domain.PriceUpdate
	b.Subscribe(func(u domain.PriceUpdate) error {
		updates = append(updates, u)
		return nil
	})

	require.NoError(t, state.Tick())
	assert.Len(t, updates, len(domain.DefaultCatalog().Tokens))
	for _, u := range updates {
		assert.Positive(t, u.Price)
		assert.Positive(t, u.Timestamp)
	}
}

func TestMarketState_SubscriberMaySnapshot(t *testing.T) {
	// Publishing happens outside the state lock, so a subscriber taking a
	// snapshot must not deadlock.
	b := NewBroadcaster(testLogger())
	state := NewMarketState(Config{}, rand.New(rand.NewSource(9)), b)
	require.NoError(t, state.Initialize(domain.DefaultCatalog()))

	b.Subscribe(func(domain.PriceUpdate) error {
		_, _ = state.Snapshot()
		return nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = state.Tick()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tick deadlocked while a subscriber snapshotted")
	}
}

func TestMarketState_SnapshotIdempotentWithoutTick(t *testing.T) {
	state := newTestState(t, Config{}, 11)
	require.NoError(t, state.Tick())

	prices1, opps1 := state.Snapshot()
	prices2, opps2 := state.Snapshot()

	assert.Equal(t, prices1, prices2)
	assert.Equal(t, opps1, opps2)
}

func TestMarketState_RefreshHookFiresOnRegeneration(t *testing.T) {
	state := newTestState(t, Config{EvictProbability: 1.0, RegenProbability: 1.0}, 12)

	var got []domain.OpportunityRecord
	calls := 0
	state.OnOpportunityRefresh(func(opps []domain.OpportunityRecord) {
		calls++
		got = opps
	})

	require.NoError(t, state.Tick())
	require.Equal(t, 1, calls)
	assert.GreaterOrEqual(t, len(got), 3)
	assert.LessOrEqual(t, len(got), 5)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].ProfitPercentage, got[i].ProfitPercentage)
	}

	// The hook gets a copy; mutating it must not leak back into the state.
	got[0].ProfitPercentage = -99
	_, opps := state.Snapshot()
	for _, opp := range opps {
		assert.NotEqual(t, -99.0, opp.ProfitPercentage)
	}
}

func TestMarketState_RefreshHookSkippedWhenListUnchanged(t *testing.T) {
	// A negative eviction probability can never be drawn, so the
	// opportunity list never changes and the hook must stay silent.
	state := newTestState(t, Config{EvictProbability: -1, RegenProbability: -1}, 13)

	calls := 0
	state.OnOpportunityRefresh(func([]domain.OpportunityRecord) { calls++ })

	for i := 0; i < 10; i++ {
		require.NoError(t, state.Tick())
	}
	assert.Zero(t, calls)
}
