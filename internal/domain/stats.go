package domain

// Mode identifies which of the three mutually exclusive backends is active
// for the life of the process.
type Mode string

const (
	ModeDemo    Mode = "demo"     // simulated market, no live credentials
	ModeLiveAPI Mode = "live_api" // delegating to the aggregation service
	ModeLive    Mode = "live"     // legacy direct wiring to on-chain components
)

// TradingStats summarizes trade execution history.
type TradingStats struct {
	TotalTrades       int     `json:"totalTrades"`
	SuccessfulTrades  int     `json:"successfulTrades"`
	SuccessRate       float64 `json:"successRate"` // percent
	TotalProfit       string  `json:"totalProfit"` // decimal string, ETH
	DailyProfit       string  `json:"dailyProfit"` // decimal string, ETH
	AvgProfitPerTrade string  `json:"avgProfitPerTrade"`
	IsRunning         bool    `json:"isRunning"`
	IsPaused          bool    `json:"isPaused"`
}

// RiskStats summarizes the risk engine's current posture.
type RiskStats struct {
	CurrentRiskLevel string  `json:"currentRiskLevel"`
	MaxDrawdown      float64 `json:"maxDrawdown"` // percent
	ExposureLimit    string  `json:"exposureLimit"`
	DailyLossLimit   string  `json:"dailyLossLimit"`
	EmergencyStopped bool    `json:"emergencyStopped"`
}

// PriceMonitorStats summarizes the price feed component.
type PriceMonitorStats struct {
	IsRunning     bool  `json:"isRunning"`
	TrackedTokens int   `json:"trackedTokens"`
	LastUpdate    int64 `json:"lastUpdate"` // unix ms, 0 when never updated
}

// StatsResponse is the uniform stats contract served by every mode. Mode is
// the discriminator; the three constructors in the backend package are the
// only producers.
type StatsResponse struct {
	Trading       TradingStats      `json:"trading"`
	Risk          RiskStats         `json:"risk"`
	WalletBalance string            `json:"walletBalance"`
	PriceMonitor  PriceMonitorStats `json:"priceMonitor"`
	Mode          Mode              `json:"mode"`
}

// ComponentHealth reports one named component in the health endpoint.
type ComponentHealth struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Health is the uniform health contract served by every mode.
type Health struct {
	Status     string                     `json:"status"`
	Timestamp  int64                      `json:"timestamp"` // unix ms
	Uptime     float64                    `json:"uptime"`    // seconds
	Components map[string]ComponentHealth `json:"components"`
}
