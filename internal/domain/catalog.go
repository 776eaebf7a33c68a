package domain

// VolatilityClass groups tokens by how aggressively the simulator perturbs
// their 24h figures when seeding.
type VolatilityClass string

const (
	VolatilityStable   VolatilityClass = "stable"
	VolatilityModerate VolatilityClass = "moderate"
	VolatilityHigh     VolatilityClass = "high"
)

// CatalogToken is one entry of the fixed token catalog: a symbol, the
// venue-specific identifier used in opportunity legs, and the baseline the
// simulator seeds prices from.
type CatalogToken struct {
	Symbol        string
	Address       string
	BaselinePrice float64
	Volatility    VolatilityClass
}

// Venue is a trading venue the bot can route through.
type Venue struct {
	Name   string
	Router string
}

// VenuePair is an ordered buy/sell venue combination.
type VenuePair struct {
	A Venue
	B Venue
}

// TokenPair is an ordered tokenA/tokenB candidate for generated
// opportunities. Both sides must resolve against the catalog.
type TokenPair struct {
	A string
	B string
}

// Catalog bundles the token table with the candidate sets the opportunity
// generator draws from.
type Catalog struct {
	Tokens     []CatalogToken
	VenuePairs []VenuePair
	TokenPairs []TokenPair
}

// Resolve returns the catalog token with the given address, if any.
func (c Catalog) Resolve(address string) (CatalogToken, bool) {
	for _, t := range c.Tokens {
		if t.Address == address {
			return t, true
		}
	}
	return CatalogToken{}, false
}

// DefaultCatalog is the fixed token/venue universe used when no catalog is
// configured. Addresses are Ethereum mainnet.
func DefaultCatalog() Catalog {
	tokens := []CatalogToken{
		{Symbol: "WETH", Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", BaselinePrice: 2456.78, Volatility: VolatilityModerate},
		{Symbol: "USDC", Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", BaselinePrice: 1.0002, Volatility: VolatilityStable},
		{Symbol: "DAI", Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F", BaselinePrice: 0.9998, Volatility: VolatilityStable},
		{Symbol: "WBTC", Address: "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", BaselinePrice: 43120.55, Volatility: VolatilityModerate},
		{Symbol: "LINK", Address: "0x514910771AF9Ca656af840dff83E8264EcF986CA", BaselinePrice: 14.87, Volatility: VolatilityHigh},
		{Symbol: "UNI", Address: "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984", BaselinePrice: 6.42, Volatility: VolatilityHigh},
	}

	uniswap := Venue{Name: "Uniswap V2", Router: "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"}
	sushi := Venue{Name: "SushiSwap", Router: "0xd9e1cE17f2641f24aE83637ab66a2cca9C378B9F"}
	shiba := Venue{Name: "ShibaSwap", Router: "0x03f7724180AA6b939894B5Ca4314783B0b36b329"}

	venuePairs := []VenuePair{
		{A: uniswap, B: sushi},
		{A: sushi, B: uniswap},
		{A: uniswap, B: shiba},
		{A: shiba, B: sushi},
	}

	tokenPairs := []TokenPair{
		{A: tokens[0].Address, B: tokens[1].Address}, // WETH/USDC
		{A: tokens[0].Address, B: tokens[2].Address}, // WETH/DAI
		{A: tokens[3].Address, B: tokens[0].Address}, // WBTC/WETH
		{A: tokens[4].Address, B: tokens[0].Address}, // LINK/WETH
		{A: tokens[5].Address, B: tokens[1].Address}, // UNI/USDC
	}

	return Catalog{Tokens: tokens, VenuePairs: venuePairs, TokenPairs: tokenPairs}
}
