package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaChIn5419/stock-screener/internal/contracts"
	"github.com/SaChIn5419/stock-screener/internal/quality"
	"github.com/SaChIn5419/stock-screener/pkg/config"
	"github.com/SaChIn5419/stock-screener/pkg/logger"
)

func testExtractor() *Extractor {
	log := logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
	return NewExtractor(quality.NewValidator(quality.DefaultConfig()), 0.07, log)
}

func series(closes ...float64) contracts.HistorySeries {
	s := make(contracts.HistorySeries, len(closes))
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		s[i] = contracts.PricePoint{
			Date:   base.AddDate(0, 0, i),
			Close:  c,
			Volume: 100000,
		}
	}
	return s
}

func TestExtractor_Derive_RejectedSeries(t *testing.T) {
	e := testExtractor()

	// Penny stock: validator rejects, extractor returns nil
	rec := e.Derive("JUNK", series(4, 4.1, 3.9), contracts.FundamentalsSnapshot{})
	assert.Nil(t, rec)

	// Empty history
	rec = e.Derive("EMPTY", nil, contracts.FundamentalsSnapshot{})
	assert.Nil(t, rec)
}

func TestExtractor_Derive_RiskReturnMetrics(t *testing.T) {
	e := testExtractor()

	rec := e.Derive("TEST", series(100, 110, 99), contracts.FundamentalsSnapshot{})
	require.NotNil(t, rec)

	assert.Equal(t, "TEST", rec.Symbol)
	assert.Equal(t, 99.0, rec.CurrentPrice)

	// Daily returns are +10% then -10%: mean 0, so annualized return is 0
	assert.Equal(t, 0.0, rec.AnnualReturnPct)

	// stdev([0.1, -0.1]) * sqrt(252) = 0.1414... * 15.87...
	assert.InDelta(t, 224.5, rec.AnnualVolatilityPct, 0.1)

	// Sharpe = (0 - 0.07) / 2.245
	assert.InDelta(t, -0.03, rec.SharpeRatio, 1e-9)

	// Cumulative path peaks at 1.1, ends at 0.99: drawdown -10%
	assert.InDelta(t, -10.0, rec.MaxDrawdownPct, 1e-6)

	// Latest close vs previous
	assert.InDelta(t, -10.0, rec.DailyChangePct, 1e-6)

	// Short window: six-month change anchors at the earliest close
	assert.InDelta(t, -1.0, rec.SixMonthChangePct, 1e-6)

	// Too short for momentum
	assert.Equal(t, 0.0, rec.Momentum12M1M)
	require.NotNil(t, rec.RiskAdjMomentum)
	assert.Equal(t, 0.0, *rec.RiskAdjMomentum)
}

func TestExtractor_Derive_SinglePoint(t *testing.T) {
	e := testExtractor()

	rec := e.Derive("ONE", series(50), contracts.FundamentalsSnapshot{})
	require.NotNil(t, rec)

	// Everything defaults to neutral, not an error
	assert.Equal(t, 50.0, rec.CurrentPrice)
	assert.Equal(t, 0.0, rec.DailyChangePct)
	assert.Equal(t, 0.0, rec.SixMonthChangePct)
	assert.Equal(t, 0.0, rec.AnnualReturnPct)
	assert.Equal(t, 0.0, rec.AnnualVolatilityPct)
	assert.Equal(t, 0.0, rec.SharpeRatio)
	assert.Equal(t, 0.0, rec.MaxDrawdownPct)
}

func TestExtractor_Derive_MomentumFallback(t *testing.T) {
	e := testExtractor()

	// 30 closes rising 1 apiece: more than a month, less than a year.
	// Anchor falls back to the earliest close; the recent leg is the
	// close 21 points back.
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	rec := e.Derive("RISE", series(closes...), contracts.FundamentalsSnapshot{})
	require.NotNil(t, rec)

	// (closes[9] - closes[0]) / closes[0] = 9/100
	assert.InDelta(t, 0.09, rec.Momentum12M1M, 1e-9)

	require.NotNil(t, rec.RiskAdjMomentum)
	assert.Greater(t, *rec.RiskAdjMomentum, 0.0)
}

func TestExtractor_Derive_FullYearMomentum(t *testing.T) {
	e := testExtractor()

	// 252 closes: flat at 100 for the first leg, stepping to 120 at the
	// one-month boundary, with tiny jitter to stay out of the zombie check.
	closes := make([]float64, 252)
	for i := range closes {
		base := 100.0
		if i >= 252-oneMonthDays {
			base = 120.0
		}
		if i%2 == 1 {
			base += 0.5
		}
		closes[i] = base
	}

	rec := e.Derive("YEAR", series(closes...), contracts.FundamentalsSnapshot{})
	require.NotNil(t, rec)

	// Anchor is closes[0]=100, recent leg closes[252-21]=120
	assert.InDelta(t, 0.20, rec.Momentum12M1M, 0.01)
}

func TestExtractor_Derive_InterestCoverageFallback(t *testing.T) {
	e := testExtractor()

	tests := []struct {
		name         string
		fundamentals contracts.FundamentalsSnapshot
		want         *float64
	}{
		{
			name: "derived from EBIT and interest expense",
			fundamentals: contracts.FundamentalsSnapshot{
				EBIT:            contracts.Float(500),
				InterestExpense: contracts.Float(-50),
			},
			want: contracts.Float(10),
		},
		{
			name: "snapshot value wins",
			fundamentals: contracts.FundamentalsSnapshot{
				InterestCoverage: contracts.Float(3),
				EBIT:             contracts.Float(500),
				InterestExpense:  contracts.Float(-50),
			},
			want: contracts.Float(3),
		},
		{
			name: "zero interest expense stays missing",
			fundamentals: contracts.FundamentalsSnapshot{
				EBIT:            contracts.Float(500),
				InterestExpense: contracts.Float(0),
			},
			want: nil,
		},
		{
			name:         "no line items stays missing",
			fundamentals: contracts.FundamentalsSnapshot{},
			want:         nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.Derive("COV", series(100, 101, 102), tt.fundamentals)
			require.NotNil(t, rec)

			if tt.want == nil {
				assert.Nil(t, rec.Fundamentals.InterestCoverage)
			} else {
				require.NotNil(t, rec.Fundamentals.InterestCoverage)
				assert.Equal(t, *tt.want, *rec.Fundamentals.InterestCoverage)
			}
		})
	}
}

func TestExtractor_Derive_DoesNotMutateInput(t *testing.T) {
	e := testExtractor()

	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	s := contracts.HistorySeries{
		{Date: base.AddDate(0, 0, 1), Close: 105, Volume: 1000},
		{Date: base, Close: 100, Volume: 1000},
	}

	rec := e.Derive("ORD", s, contracts.FundamentalsSnapshot{})
	require.NotNil(t, rec)

	// Extractor sorted internally; latest by date is 105
	assert.Equal(t, 105.0, rec.CurrentPrice)
	assert.False(t, math.IsNaN(rec.DailyChangePct))

	// Caller's slice order preserved
	assert.Equal(t, 105.0, s[0].Close)
}
