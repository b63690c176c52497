package contracts

// EntityRecord is the per-symbol output row of metric extraction.
// Created once per entity; scoring appends derived columns on
// ScoredRecord instead of mutating this.
type EntityRecord struct {
	Symbol string `json:"symbol"`

	// Price-derived metrics (percentages where the name says so)
	CurrentPrice         float64 `json:"current_price"`
	DailyChangePct       float64 `json:"daily_change_pct"`
	SixMonthChangePct    float64 `json:"six_month_change_pct"`
	AnnualReturnPct      float64 `json:"annual_return_pct"`
	AnnualVolatilityPct  float64 `json:"annual_volatility_pct"`
	SharpeRatio          float64 `json:"sharpe_ratio"`
	MaxDrawdownPct       float64 `json:"max_drawdown_pct"` // <= 0

	// Momentum with a brake: 12M return excluding the most recent month
	Momentum12M1M   float64  `json:"momentum_12m_1m"`
	RiskAdjMomentum *float64 `json:"risk_adjusted_momentum,omitempty"`

	Fundamentals FundamentalsSnapshot `json:"fundamentals"`
}

// Industry returns the industry label, or empty when unknown
func (r *EntityRecord) Industry() string {
	return r.Fundamentals.Industry
}
