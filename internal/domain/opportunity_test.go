package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityFor(t *testing.T) {
	tests := []struct {
		profit float64
		want   int
	}{
		{0, 0},
		{0.09, 0},
		{0.5, 5},
		{0.99, 9},
		{1.0, 10},
		{2.55, 25},
		{3.49, 34},
		{10.0, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PriorityFor(tt.profit), "profit %.2f", tt.profit)
	}
}

func TestSetProfitPercentage(t *testing.T) {
	var opp OpportunityRecord
	opp.SetProfitPercentage(2.71)

	assert.Equal(t, 2.71, opp.ProfitPercentage)
	assert.Equal(t, 27, opp.Priority)

	// Updating the profit keeps the priority consistent.
	opp.SetProfitPercentage(0.4)
	assert.Equal(t, 4, opp.Priority)
}

func TestDefaultCatalog_Consistent(t *testing.T) {
	catalog := DefaultCatalog()

	require.NotEmpty(t, catalog.Tokens)
	require.NotEmpty(t, catalog.VenuePairs)
	require.NotEmpty(t, catalog.TokenPairs)

	// Every token pair must resolve both sides and span distinct tokens.
	for _, pair := range catalog.TokenPairs {
		a, ok := catalog.Resolve(pair.A)
		require.True(t, ok, "unknown token address %s", pair.A)
		b, ok := catalog.Resolve(pair.B)
		require.True(t, ok, "unknown token address %s", pair.B)
		assert.NotEqual(t, a.Symbol, b.Symbol)
	}

	// Venue pairs always route across two different venues.
	for _, vp := range catalog.VenuePairs {
		assert.NotEqual(t, vp.A.Name, vp.B.Name)
		assert.NotEmpty(t, vp.A.Router)
		assert.NotEmpty(t, vp.B.Router)
	}

	// Symbols are unique.
	seen := make(map[string]bool)
	for _, tok := range catalog.Tokens {
		assert.False(t, seen[tok.Symbol], "duplicate symbol %s", tok.Symbol)
		seen[tok.Symbol] = true
		assert.Positive(t, tok.BaselinePrice)
	}
}

func TestResolve_UnknownAddress(t *testing.T) {
	_, ok := DefaultCatalog().Resolve("0x0000000000000000000000000000000000000000")
	assert.False(t, ok)
}
