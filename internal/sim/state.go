package sim

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/lucasharte/arbot/internal/domain"
)

const (
	// defaultEvictProbability is the per-tick chance of dropping the oldest
	// opportunity.
	defaultEvictProbability = 0.3

	// defaultRegenProbability is the chance, after an eviction draw
	// succeeded, of replacing the whole opportunity batch.
	defaultRegenProbability = 0.7

	priceSource = "simulated"
)

// Config tunes the market state. Zero values fall back to the defaults
// above; tests override the probabilities to force deterministic paths.
type Config struct {
	EvictProbability float64
	RegenProbability float64
}

// MarketState owns the authoritative simulated market snapshot: a price
// table keyed by symbol and an ordered opportunity list (oldest first). The
// tick loop is the sole mutator; readers get point-in-time copies through
// Snapshot, never internal state.
type MarketState struct {
	mu          sync.RWMutex
	initialized bool
	catalog     domain.Catalog
	prices      map[string]domain.PriceRecord
	opps        []domain.OpportunityRecord

	rng         *rand.Rand
	gen         *Generator
	broadcaster *Broadcaster
	onRefresh   OpportunityHook
	evictProb   float64
	regenProb   float64
	now         func() time.Time
}

// OpportunityHook receives a copy of the opportunity list, sorted by
// ProfitPercentage descending, after a tick changes it.
type OpportunityHook func([]domain.OpportunityRecord)

// NewMarketState creates an uninitialized MarketState. The broadcaster may
// be nil, in which case ticks mutate state without emitting events.
func NewMarketState(cfg Config, rng *rand.Rand, broadcaster *Broadcaster) *MarketState {
	if cfg.EvictProbability == 0 {
		cfg.EvictProbability = defaultEvictProbability
	}
	if cfg.RegenProbability == 0 {
		cfg.RegenProbability = defaultRegenProbability
	}
	return &MarketState{
		prices:      make(map[string]domain.PriceRecord),
		rng:         rng,
		gen:         NewGenerator(rng),
		broadcaster: broadcaster,
		evictProb:   cfg.EvictProbability,
		regenProb:   cfg.RegenProbability,
		now:         time.Now,
	}
}

// OnOpportunityRefresh registers fn to be called after every tick that
// evicts or regenerates opportunities. Only one hook is kept; registering
// is safe while the tick loop is running.
func (m *MarketState) OnOpportunityRefresh(fn OpportunityHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRefresh = fn
}

// Initialize seeds a price record for every catalog token from its baseline
// and generates the initial opportunity batch. It must be called exactly
// once before any tick.
func (m *MarketState) Initialize(catalog domain.Catalog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return fmt.Errorf("sim: market state already initialized")
	}

	m.catalog = catalog
	nowMs := m.now().UnixMilli()
	for _, tok := range catalog.Tokens {
		m.prices[tok.Symbol] = domain.PriceRecord{
			Symbol:    tok.Symbol,
			Price:     tok.BaselinePrice,
			Change24h: m.seedChange24h(tok.Volatility),
			Volume24h: m.seedVolume24h(tok.Volatility),
			Timestamp: nowMs,
			Source:    priceSource,
		}
	}
	m.opps = m.gen.Batch(catalog)
	m.initialized = true
	return nil
}

// seedChange24h draws an initial 24h change scaled by volatility class.
func (m *MarketState) seedChange24h(class domain.VolatilityClass) float64 {
	switch class {
	case domain.VolatilityStable:
		return (m.rng.Float64() - 0.5) * 0.2 // [-0.1, +0.1)
	case domain.VolatilityHigh:
		return (m.rng.Float64() - 0.5) * 20 // [-10, +10)
	default:
		return (m.rng.Float64() - 0.5) * 8 // [-4, +4)
	}
}

// seedVolume24h draws a plausible 24h volume scaled by volatility class.
func (m *MarketState) seedVolume24h(class domain.VolatilityClass) float64 {
	base := 1_000_000 + m.rng.Float64()*9_000_000
	if class == domain.VolatilityStable {
		base *= 5
	}
	return round(base, 2)
}

// Tick advances the simulation one step: every tracked price moves by an
// independent multiplicative perturbation in [-1%, +1%], change24h by an
// additive perturbation in [-0.05, +0.05] points, and timestamps advance
// strictly monotonically per symbol. One update per symbol is published to
// the broadcaster. Afterwards, one draw decides eviction of the oldest
// opportunity (p=0.3) and, only when that draw succeeded, a second draw
// decides full batch regeneration (p=0.7) — two draws, in that order. When
// the opportunity list changes, the refresh hook receives a sorted copy.
func (m *MarketState) Tick() error {
	m.mu.Lock()
	if !m.initialized {
		m.mu.Unlock()
		return fmt.Errorf("sim: tick: %w", domain.ErrNotInitialized)
	}

	nowMs := m.now().UnixMilli()
	updates := make([]domain.PriceUpdate, 0, len(m.prices))
	for sym, rec := range m.prices {
		rec.Price *= 1 + (m.rng.Float64()*2-1)*0.01
		rec.Change24h += (m.rng.Float64()*2 - 1) * 0.05
		ts := nowMs
		if ts <= rec.Timestamp {
			ts = rec.Timestamp + 1
		}
		rec.Timestamp = ts
		m.prices[sym] = rec
		updates = append(updates, domain.PriceUpdate{
			Symbol:    sym,
			Price:     rec.Price,
			Timestamp: rec.Timestamp,
		})
	}

	oppsChanged := false
	if m.rng.Float64() < m.evictProb {
		if len(m.opps) > 0 {
			m.opps = m.opps[1:]
			oppsChanged = true
		}
		if m.rng.Float64() < m.regenProb {
			m.opps = m.gen.Batch(m.catalog)
			oppsChanged = true
		}
	}
	var refreshed []domain.OpportunityRecord
	hook := m.onRefresh
	if oppsChanged && hook != nil {
		refreshed = make([]domain.OpportunityRecord, len(m.opps))
		copy(refreshed, m.opps)
		sort.SliceStable(refreshed, func(i, j int) bool {
			return refreshed[i].ProfitPercentage > refreshed[j].ProfitPercentage
		})
	}
	m.mu.Unlock()

	// Publish outside the lock so subscribers may take snapshots.
	if m.broadcaster != nil {
		for _, u := range updates {
			m.broadcaster.Publish(u)
		}
	}
	if oppsChanged && hook != nil {
		hook(refreshed)
	}
	return nil
}

// Snapshot returns a point-in-time copy of the price table and the
// opportunity list sorted by ProfitPercentage descending, ties broken by
// insertion order. The returned values share no memory with internal state.
func (m *MarketState) Snapshot() (map[string]domain.PriceRecord, []domain.OpportunityRecord) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prices := make(map[string]domain.PriceRecord, len(m.prices))
	for sym, rec := range m.prices {
		prices[sym] = rec
	}

	opps := make([]domain.OpportunityRecord, len(m.opps))
	copy(opps, m.opps)
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].ProfitPercentage > opps[j].ProfitPercentage
	})
	return prices, opps
}

// OpportunityCount reports the current opportunity list length.
func (m *MarketState) OpportunityCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.opps)
}

// Catalog returns the catalog the state was initialized with.
func (m *MarketState) Catalog() domain.Catalog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.catalog
}
