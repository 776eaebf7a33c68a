package domain

import "context"

// The legacy direct mode wires the facade to the three bot-internal
// components. Their real implementations (detection algorithm, feed
// ingestion, flash-loan execution) live outside this data layer; the
// interfaces below are the full contract the backend depends on.

// OpportunityFinder detects arbitrage opportunities across venues.
type OpportunityFinder interface {
	Opportunities(ctx context.Context) ([]OpportunityRecord, error)
	Health(ctx context.Context) ComponentHealth
}

// PriceMonitor ingests live price feeds for the tracked token set.
type PriceMonitor interface {
	Prices(ctx context.Context) ([]PriceRecord, error)
	Stats(ctx context.Context) PriceMonitorStats
	Health(ctx context.Context) ComponentHealth
}

// TradeExecutor drives flash-loan execution and owns the trading/risk
// state surfaced through the stats endpoint.
type TradeExecutor interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	EmergencyStop(ctx context.Context) error

	TradingStats(ctx context.Context) (TradingStats, error)
	RiskStats(ctx context.Context) (RiskStats, error)
	Health(ctx context.Context) ComponentHealth
}
