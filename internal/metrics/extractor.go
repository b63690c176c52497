package metrics

import (
	"math"

	"github.com/SaChIn5419/stock-screener/internal/contracts"
	"github.com/SaChIn5419/stock-screener/internal/quality"
	"github.com/SaChIn5419/stock-screener/internal/stats"
	"github.com/SaChIn5419/stock-screener/pkg/logger"
)

// Window lengths in trading days
const (
	tradingDaysPerYear = 252
	sixMonthDays       = 126
	oneMonthDays       = 21
)

// Extractor derives the per-entity return/risk metrics from a price
// history and merges them with the fetched fundamentals.
type Extractor struct {
	validator    *quality.Validator
	riskFreeRate float64 // annualized, for Sharpe ratio
	logger       *logger.Logger
}

// NewExtractor creates a new Extractor instance
func NewExtractor(validator *quality.Validator, riskFreeRate float64, log *logger.Logger) *Extractor {
	return &Extractor{
		validator:    validator,
		riskFreeRate: riskFreeRate,
		logger:       log.WithField("module", "metrics"),
	}
}

// Derive builds the EntityRecord for one symbol. It returns nil when
// the history fails the quality check or any unexpected fault occurs
// while deriving; the entity is then dropped from the batch, never
// failing the batch itself.
func (e *Extractor) Derive(symbol string, series contracts.HistorySeries, fundamentals contracts.FundamentalsSnapshot) (rec *contracts.EntityRecord) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(map[string]interface{}{
				"symbol": symbol,
				"fault":  r,
			}).Warn("Metric derivation fault, entity dropped")
			rec = nil
		}
	}()

	verdict := e.validator.Check(series)
	if !verdict.Passed {
		e.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"reason": verdict.Reason,
			"detail": verdict.Detail,
		}).Debug("Entity skipped by quality check")
		return nil
	}

	// Work on a sorted copy; the validator does not reorder the input
	s := make(contracts.HistorySeries, len(series))
	copy(s, series)
	s.SortByDate()

	closes := s.Closes()
	current := closes[len(closes)-1]
	returns := s.PctChanges()

	annualReturn, annualVol := e.annualize(returns)

	sharpe := 0.0
	if annualVol > 0 {
		sharpe = (annualReturn - e.riskFreeRate) / annualVol
	}

	momentum, riskAdjMomentum := e.momentum(closes, annualVol)

	rec = &contracts.EntityRecord{
		Symbol:              symbol,
		CurrentPrice:        stats.Round(current, 2),
		DailyChangePct:      stats.Round(e.dailyChange(closes), 2),
		SixMonthChangePct:   stats.Round(e.sixMonthChange(closes), 2),
		AnnualReturnPct:     stats.Round(annualReturn*100, 2),
		AnnualVolatilityPct: stats.Round(annualVol*100, 2),
		SharpeRatio:         stats.Round(sharpe, 2),
		MaxDrawdownPct:      stats.Round(e.maxDrawdown(returns)*100, 2),
		Momentum12M1M:       momentum,
		RiskAdjMomentum:     contracts.Float(riskAdjMomentum),
		Fundamentals:        fundamentals,
	}

	// Interest coverage is often missing from the snapshot; derive it
	// from the latest income statement line items when possible.
	if rec.Fundamentals.InterestCoverage == nil {
		if cov, ok := deriveInterestCoverage(fundamentals); ok {
			rec.Fundamentals.InterestCoverage = contracts.Float(cov)
		}
	}

	return rec
}

// annualize converts daily returns to annualized return and volatility.
// Both are 0 for series too short to produce a return.
func (e *Extractor) annualize(returns []float64) (float64, float64) {
	if len(returns) == 0 {
		return 0, 0
	}

	avgDaily := stats.Mean(returns)
	annualReturn := math.Pow(1+avgDaily, tradingDaysPerYear) - 1
	annualVol := stats.StdDev(returns) * math.Sqrt(tradingDaysPerYear)

	return annualReturn, annualVol
}

// maxDrawdown is the deepest peak-to-trough loss of the cumulative
// return path, as a fraction <= 0. Fewer than 2 points means 0.
func (e *Extractor) maxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	cum := 1.0
	runningMax := math.Inf(-1)
	maxDD := 0.0

	for _, r := range returns {
		cum *= 1 + r
		if cum > runningMax {
			runningMax = cum
		}
		dd := (cum - runningMax) / runningMax
		if dd < maxDD {
			maxDD = dd
		}
	}

	return maxDD
}

// dailyChange is the latest close-over-previous-close change in percent
func (e *Extractor) dailyChange(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}
	prev := closes[len(closes)-2]
	return (closes[len(closes)-1] - prev) / prev * 100
}

// sixMonthChange compares the latest close to the close ~126 trading
// days back, falling back to the earliest available close for shorter
// windows
func (e *Extractor) sixMonthChange(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}

	var anchor float64
	if len(closes) >= sixMonthDays {
		anchor = closes[len(closes)-sixMonthDays]
	} else {
		anchor = closes[0]
	}

	return (closes[len(closes)-1] - anchor) / anchor * 100
}

// momentum computes the 12M-minus-1M momentum: the return from ~252
// days back to ~21 days back, skipping the most recent month. Shorter
// windows anchor at the earliest close; the risk-adjusted variant
// divides by annualized volatility.
func (e *Extractor) momentum(closes []float64, annualVol float64) (float64, float64) {
	var momentum float64

	switch {
	case len(closes) >= tradingDaysPerYear:
		anchor := closes[len(closes)-tradingDaysPerYear]
		recent := closes[len(closes)-oneMonthDays]
		momentum = (recent - anchor) / anchor
	case len(closes) > oneMonthDays:
		anchor := closes[0]
		recent := closes[len(closes)-oneMonthDays]
		momentum = (recent - anchor) / anchor
	default:
		return 0, 0
	}

	if annualVol > 0 {
		return momentum, momentum / annualVol
	}
	return momentum, 0
}

// deriveInterestCoverage computes |EBIT / interest expense| from the
// latest financial statement when both line items are present
func deriveInterestCoverage(f contracts.FundamentalsSnapshot) (float64, bool) {
	if f.EBIT == nil || f.InterestExpense == nil || *f.InterestExpense == 0 {
		return 0, false
	}
	return math.Abs(*f.EBIT / *f.InterestExpense), true
}
