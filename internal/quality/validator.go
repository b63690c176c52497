package quality

import (
	"fmt"
	"math"

	"github.com/SaChIn5419/stock-screener/internal/contracts"
	"github.com/SaChIn5419/stock-screener/internal/stats"
)

// Verdict is the outcome of a history quality check
type Verdict struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Check reasons, stable for callers that branch on them
const (
	ReasonOK       = "ok"
	ReasonEmpty    = "empty series"
	ReasonPenny    = "penny stock risk"
	ReasonCorrupt  = "corrupt data"
	ReasonIlliquid = "illiquidity risk"
	ReasonJump     = "unrealistic jump"
	ReasonZombie   = "zombie stock"
)

// Config holds quality validator thresholds
type Config struct {
	MinPrice        float64 // penny-stock floor (local currency)
	MaxDailyJump    float64 // single-day change above this is a suspected data error
	MicroCapPrice   float64 // at or below this price, large jumps are tolerated
	ZeroVolumeDays  int     // consecutive zero-volume days that mean illiquidity
	FlatWindow      int     // consecutive flat closes that trigger the stale check
	StaleStdevRatio float64 // 30-close stdev below ratio*price means a dead listing
}

// DefaultConfig returns default validator thresholds
func DefaultConfig() Config {
	return Config{
		MinPrice:        5.0,
		MaxDailyJump:    0.50,
		MicroCapPrice:   20,
		ZeroVolumeDays:  3,
		FlatWindow:      10,
		StaleStdevRatio: 0.001,
	}
}

// Validator decides whether a historical series is trustworthy enough
// to derive metrics from. Check is pure; the validator holds only
// configuration.
type Validator struct {
	config Config
}

// NewValidator creates a new Validator instance
func NewValidator(config Config) *Validator {
	return &Validator{config: config}
}

// Check runs the quality checks in order and returns the first failure.
// The caller's slice is not modified.
func (v *Validator) Check(series contracts.HistorySeries) Verdict {
	// Basic integrity
	if len(series) == 0 {
		return Verdict{Passed: false, Reason: ReasonEmpty}
	}

	// Sort a copy; caller order is not trusted
	s := make(contracts.HistorySeries, len(series))
	copy(s, series)
	s.SortByDate()

	last := s.LatestClose()

	// Penny stock filter: spreads below this price are unusable
	if last < v.config.MinPrice {
		return Verdict{
			Passed: false,
			Reason: ReasonPenny,
			Detail: fmt.Sprintf("price %.2f < %.2f", last, v.config.MinPrice),
		}
	}

	// Data gap check: missing or zero closes anywhere in the window
	for _, p := range s {
		if math.IsNaN(p.Close) || p.Close == 0 {
			return Verdict{
				Passed: false,
				Reason: ReasonCorrupt,
				Detail: fmt.Sprintf("missing or zero close on %s", p.Date.Format("2006-01-02")),
			}
		}
	}

	// Liquidity check: flat prices are fine for small caps, but there
	// must be volume. Missing volume data skips the check entirely.
	if s.HasVolume() {
		if verdict, failed := v.checkLiquidity(s); failed {
			return verdict
		}
	}

	changes := s.PctChanges()

	// Spike detector: a >50% single-day move is almost certainly an
	// unadjusted split unless the stock trades at micro-cap prices,
	// where that kind of volatility is real.
	for _, c := range changes {
		if c > v.config.MaxDailyJump && last > v.config.MicroCapPrice {
			return Verdict{
				Passed: false,
				Reason: ReasonJump,
				Detail: fmt.Sprintf("single-day change %.1f%%", c*100),
			}
		}
	}

	// Stale price check: a long flat run alone is tolerated (stable
	// large caps exist); it only fails when recent variance is near zero too.
	if v.hasFlatRun(changes) {
		recent := s.Closes()
		if len(recent) > 30 {
			recent = recent[len(recent)-30:]
		}
		if stats.StdDev(recent) < last*v.config.StaleStdevRatio {
			return Verdict{
				Passed: false,
				Reason: ReasonZombie,
				Detail: fmt.Sprintf("price unchanged for %d+ days", v.config.FlatWindow),
			}
		}
	}

	return Verdict{Passed: true, Reason: ReasonOK}
}

// checkLiquidity fails when volume is zero for N consecutive days
func (v *Validator) checkLiquidity(s contracts.HistorySeries) (Verdict, bool) {
	streak := 0
	for _, p := range s {
		if p.Volume == 0 {
			streak++
			if streak >= v.config.ZeroVolumeDays {
				return Verdict{
					Passed: false,
					Reason: ReasonIlliquid,
					Detail: fmt.Sprintf("no trading volume for %d+ consecutive days", v.config.ZeroVolumeDays),
				}, true
			}
		} else {
			streak = 0
		}
	}
	return Verdict{}, false
}

// hasFlatRun reports whether any FlatWindow consecutive day-over-day
// changes are exactly zero
func (v *Validator) hasFlatRun(changes []float64) bool {
	streak := 0
	for _, c := range changes {
		if c == 0 {
			streak++
			if streak >= v.config.FlatWindow {
				return true
			}
		} else {
			streak = 0
		}
	}
	return false
}
