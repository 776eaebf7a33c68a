package sim

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/lucasharte/arbot/internal/domain"
)

// Generator produces synthetic arbitrage opportunities referencing the
// fixed token/venue catalog. It has no side effects beyond its own sequence
// counter, which guarantees ID uniqueness within a process run; behavior is
// fully reproducible by seeding the injected random source.
type Generator struct {
	rng *rand.Rand
	seq uint64
	now func() time.Time
}

// NewGenerator creates a Generator drawing from rng. Pass a seeded source
// in tests for deterministic output.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng, now: time.Now}
}

// Batch returns a fresh opportunity batch of random size (3 to 5 records).
func (g *Generator) Batch(catalog domain.Catalog) []domain.OpportunityRecord {
	count := 3 + g.rng.Intn(3)
	return g.Generate(catalog, count)
}

// Generate produces count opportunities. Token and venue pairs are drawn
// uniformly from the catalog candidate sets; records may be backdated up to
// 30s so a fresh batch does not look implausibly synchronized.
func (g *Generator) Generate(catalog domain.Catalog, count int) []domain.OpportunityRecord {
	opps := make([]domain.OpportunityRecord, 0, count)
	for i := 0; i < count; i++ {
		opps = append(opps, g.one(catalog))
	}
	return opps
}

func (g *Generator) one(catalog domain.Catalog) domain.OpportunityRecord {
	pair := catalog.TokenPairs[g.rng.Intn(len(catalog.TokenPairs))]
	venues := catalog.VenuePairs[g.rng.Intn(len(catalog.VenuePairs))]

	profitPct := 0.5 + g.rng.Float64()*3.0
	amountIn := round(1.0+g.rng.Float64()*5.0, 2)
	expectedProfit := round(amountIn*profitPct/100, 6)
	gasEstimate := round(0.01+g.rng.Float64()*0.02, 6)

	now := g.now()
	backdate := time.Duration(g.rng.Int63n(30_000)) * time.Millisecond

	g.seq++
	opp := domain.OpportunityRecord{
		ID:             fmt.Sprintf("opp-%d-%d", g.seq, now.UnixMilli()),
		TokenA:         pair.A,
		TokenB:         pair.B,
		AmountIn:       formatDecimal(amountIn, 2),
		ExpectedProfit: formatDecimal(expectedProfit, 6),
		VenueA: domain.VenueQuote{
			Name:        venues.A.Name,
			Router:      venues.A.Router,
			QuotedPrice: round(1000+g.rng.Float64()*1000, 2),
		},
		VenueB: domain.VenueQuote{
			Name:        venues.B.Name,
			Router:      venues.B.Router,
			QuotedPrice: round(1000+g.rng.Float64()*1000, 2),
		},
		GasEstimate: formatDecimal(gasEstimate, 6),
		Timestamp:   now.Add(-backdate),
	}
	opp.SetProfitPercentage(profitPct)
	return opp
}

// round rounds v to the given number of decimal places.
func round(v float64, places int) float64 {
	shift := math.Pow10(places)
	return math.Round(v*shift) / shift
}

// formatDecimal renders an already-rounded value as a fixed-point decimal
// string.
func formatDecimal(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}
