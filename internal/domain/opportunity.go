package domain

import (
	"math"
	"time"
)

// VenueQuote identifies one side of a cross-venue arbitrage route.
type VenueQuote struct {
	Name        string  `json:"name"`
	Router      string  `json:"router"`
	QuotedPrice float64 `json:"quotedPrice"`
}

// OpportunityRecord describes a potential cross-venue arbitrage trade.
// Decimal amounts are carried as strings to preserve precision across JSON
// boundaries. Priority is derived from ProfitPercentage and must be
// recomputed whenever ProfitPercentage changes.
type OpportunityRecord struct {
	ID               string     `json:"id"`
	TokenA           string     `json:"tokenA"`
	TokenB           string     `json:"tokenB"`
	AmountIn         string     `json:"amountIn"`       // positive decimal string
	ExpectedProfit   string     `json:"expectedProfit"` // decimal string, >= 0
	ProfitPercentage float64    `json:"profitPercentage"`
	VenueA           VenueQuote `json:"venueA"`
	VenueB           VenueQuote `json:"venueB"`
	GasEstimate      string     `json:"gasEstimate"` // positive decimal string
	Timestamp        time.Time  `json:"timestamp"`
	Priority         int        `json:"priority"`
}

// PriorityFor derives the scheduling priority for a profit percentage.
// Monotonic in its argument.
func PriorityFor(profitPercentage float64) int {
	return int(math.Floor(profitPercentage * 10))
}

// SetProfitPercentage updates ProfitPercentage and rederives Priority so the
// two never go stale relative to each other.
func (o *OpportunityRecord) SetProfitPercentage(p float64) {
	o.ProfitPercentage = p
	o.Priority = PriorityFor(p)
}
