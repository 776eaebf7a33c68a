package domain

// PriceRecord is the latest known quote for a single tracked token.
// Timestamp is wall-clock milliseconds and is strictly non-decreasing per
// symbol across mutations; Price is always > 0.
type PriceRecord struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"` // percent, signed
	Volume24h float64 `json:"volume24h"`
	Timestamp int64   `json:"timestamp"` // unix ms
	Source    string  `json:"source"`
}

// PriceUpdate is the event emitted to broadcaster subscribers whenever a
// tracked symbol's price changes.
type PriceUpdate struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"` // unix ms
}
