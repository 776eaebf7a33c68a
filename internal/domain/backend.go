package domain

import "context"

// Backend is the uniform facade every data-layer mode must implement so the
// API handlers stay backend-agnostic. Every method is defined in every mode:
// a mode that lacks the underlying capability returns ErrNotInitialized (or
// a zero value where documented) rather than failing ambiguously.
type Backend interface {
	// Mode reports which backend variant is active. Constant for the life
	// of the process.
	Mode() Mode

	// Opportunities returns the current opportunity set sorted by
	// ProfitPercentage descending (stable with respect to insertion order).
	Opportunities(ctx context.Context) ([]OpportunityRecord, error)

	// Prices returns the current quote for every tracked token.
	Prices(ctx context.Context) ([]PriceRecord, error)

	// Stats returns the mode-shaped stats response.
	Stats(ctx context.Context) (StatsResponse, error)

	// Health reports component health for the active mode. Never returns an
	// error; degraded components are reported in the payload.
	Health(ctx context.Context) Health

	// Trading controls. Modes without a trading-capable executor return
	// ErrNotInitialized.
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	EmergencyStop(ctx context.Context) error
}
