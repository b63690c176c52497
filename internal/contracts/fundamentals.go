package contracts

// FundamentalsSnapshot holds the fundamental fields fetched for one entity.
// Every numeric field is optional; missing data is expected, not an error.
// Downstream stages substitute documented neutral or penalty defaults.
type FundamentalsSnapshot struct {
	CompanyName string `json:"company_name,omitempty"`
	Sector      string `json:"sector,omitempty"`
	Industry    string `json:"industry,omitempty"`

	MarketCap        *float64 `json:"market_cap,omitempty"`
	PERatio          *float64 `json:"pe_ratio,omitempty"`
	ForwardPE        *float64 `json:"forward_pe,omitempty"`
	EVToEBITDA       *float64 `json:"ev_to_ebitda,omitempty"`
	PEGRatio         *float64 `json:"peg_ratio,omitempty"`
	PriceToBook      *float64 `json:"price_to_book,omitempty"`
	DividendYield    *float64 `json:"dividend_yield,omitempty"`
	ROE              *float64 `json:"roe,omitempty"`
	ROIC             *float64 `json:"roic,omitempty"`
	FreeCashFlow     *float64 `json:"free_cash_flow,omitempty"`
	NetIncome        *float64 `json:"net_income,omitempty"`
	InterestCoverage *float64 `json:"interest_coverage,omitempty"`
	DebtToEquity     *float64 `json:"debt_to_equity,omitempty"`
	ProfitMargin     *float64 `json:"profit_margin,omitempty"`
	EarningsGrowth   *float64 `json:"earnings_growth,omitempty"`
	RevenueGrowth    *float64 `json:"revenue_growth,omitempty"`

	// Latest income statement line items, used to derive interest
	// coverage when the snapshot field itself is absent.
	EBIT            *float64 `json:"ebit,omitempty"`
	InterestExpense *float64 `json:"interest_expense,omitempty"`
}

// Float returns a pointer to v. Convenience for building snapshots.
func Float(v float64) *float64 {
	return &v
}

// FloatOr dereferences p, or returns fallback when p is nil
func FloatOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}
