package backend

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/lucasharte/arbot/internal/domain"
	"github.com/lucasharte/arbot/internal/sim"
)

// Demo-mode stats are themselves randomly generated within the bounds
// below. This is a deliberate simulation of a trading history, not sourced
// from real trades.
const (
	demoTradesMin      = 10 // totalTrades in [10, 60)
	demoTradesSpan     = 50
	demoSuccessMin     = 8 // successfulTrades in [8, 48)
	demoSuccessSpan    = 40
	demoTotalProfitMin = 0.5 // ETH, in [0.5, 5.5)
	demoDailyProfitMin = 0.1 // ETH, in [0.1, 1.1)
	demoDrawdownMin    = 1.0 // percent, in [1, 5)
	demoBalanceMin     = 5.0 // ETH, in [5, 15)

	demoExposureLimit  = "10.000000"
	demoDailyLossLimit = "1.000000"
)

// Simulated is the demo backend: it serves everything from the local
// simulated market state and synthesizes its trading/risk figures.
type Simulated struct {
	state     *sim.MarketState
	startedAt time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated wraps an initialized market state. rng feeds the synthetic
// stats; pass a seeded source in tests.
func NewSimulated(state *sim.MarketState, rng *rand.Rand) *Simulated {
	return &Simulated{
		state:     state,
		startedAt: time.Now(),
		rng:       rng,
	}
}

// Mode reports demo.
func (s *Simulated) Mode() domain.Mode { return domain.ModeDemo }

// Opportunities returns the snapshot's opportunity list, already sorted by
// profit percentage descending.
func (s *Simulated) Opportunities(ctx context.Context) ([]domain.OpportunityRecord, error) {
	_, opps := s.state.Snapshot()
	return opps, nil
}

// Prices returns the snapshot's price table as a slice.
func (s *Simulated) Prices(ctx context.Context) ([]domain.PriceRecord, error) {
	prices, _ := s.state.Snapshot()
	out := make([]domain.PriceRecord, 0, len(prices))
	for _, rec := range prices {
		out = append(out, rec)
	}
	return out, nil
}

// Stats synthesizes a demo stats response within the documented bounds.
func (s *Simulated) Stats(ctx context.Context) (domain.StatsResponse, error) {
	s.mu.Lock()
	total := demoTradesMin + s.rng.Intn(demoTradesSpan)
	successful := demoSuccessMin + s.rng.Intn(demoSuccessSpan)
	totalProfit := demoTotalProfitMin + s.rng.Float64()*5.0
	dailyProfit := demoDailyProfitMin + s.rng.Float64()*1.0
	drawdown := demoDrawdownMin + s.rng.Float64()*4.0
	balance := demoBalanceMin + s.rng.Float64()*10.0
	s.mu.Unlock()

	if successful > total {
		successful = total
	}

	prices, _ := s.state.Snapshot()
	var lastUpdate int64
	for _, rec := range prices {
		if rec.Timestamp > lastUpdate {
			lastUpdate = rec.Timestamp
		}
	}

	return domain.StatsResponse{
		Trading: domain.TradingStats{
			TotalTrades:       total,
			SuccessfulTrades:  successful,
			SuccessRate:       float64(successful) / float64(total) * 100,
			TotalProfit:       formatEth(totalProfit),
			DailyProfit:       formatEth(dailyProfit),
			AvgProfitPerTrade: formatEth(totalProfit / float64(total)),
			IsRunning:         true,
		},
		Risk: domain.RiskStats{
			CurrentRiskLevel: "low",
			MaxDrawdown:      drawdown,
			ExposureLimit:    demoExposureLimit,
			DailyLossLimit:   demoDailyLossLimit,
		},
		WalletBalance: formatEth(balance),
		PriceMonitor: domain.PriceMonitorStats{
			IsRunning:     true,
			TrackedTokens: len(prices),
			LastUpdate:    lastUpdate,
		},
		Mode: domain.ModeDemo,
	}, nil
}

// Health reports the simulator components. Never errors.
func (s *Simulated) Health(ctx context.Context) domain.Health {
	prices, opps := s.state.Snapshot()
	return domain.Health{
		Status:    "healthy",
		Timestamp: time.Now().UnixMilli(),
		Uptime:    time.Since(s.startedAt).Seconds(),
		Components: map[string]domain.ComponentHealth{
			"simulator": {Status: "ok"},
			"priceMonitor": {
				Status: "ok",
				Detail: strconv.Itoa(len(prices)) + " tokens tracked",
			},
			"opportunityFinder": {
				Status: "ok",
				Detail: strconv.Itoa(len(opps)) + " opportunities",
			},
		},
	}
}

// Trading controls are not available in demo mode.
func (s *Simulated) Start(ctx context.Context) error         { return domain.ErrNotAvailable }
func (s *Simulated) Stop(ctx context.Context) error          { return domain.ErrNotAvailable }
func (s *Simulated) Pause(ctx context.Context) error         { return domain.ErrNotAvailable }
func (s *Simulated) Resume(ctx context.Context) error        { return domain.ErrNotAvailable }
func (s *Simulated) EmergencyStop(ctx context.Context) error { return domain.ErrNotAvailable }

// formatEth renders an ETH amount as a 6-decimal string.
func formatEth(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
