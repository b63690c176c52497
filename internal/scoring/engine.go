package scoring

import (
	"math"
	"sort"

	"github.com/SaChIn5419/stock-screener/internal/contracts"
	"github.com/SaChIn5419/stock-screener/internal/stats"
	"github.com/SaChIn5419/stock-screener/pkg/logger"
)

const (
	// Substituted when P/E is missing: treat unknown as expensive so it
	// never triggers the value-trap flag on its own.
	missingPE = 999

	// Penalty valuation metric when both EV/EBITDA and P/E are missing
	missingValuation = 100

	// Z-score pinned to the worst end when the valuation metric itself
	// is not a number.
	missingZScore = 10

	// Risk-adjusted momentum substituted for entities with no momentum
	// data, ranking them below every real observation.
	missingMomentum = -100

	valueTrapPE = 10

	// Industry groups below this size fall back to population stats
	minPeerGroup = 3
)

// WeightConfig defines factor weights for the composite score
type WeightConfig struct {
	Quality  float64
	Value    float64
	Momentum float64
}

// DefaultWeightConfig returns the standard factor blend
func DefaultWeightConfig() WeightConfig {
	return WeightConfig{
		Quality:  0.40,
		Value:    0.30,
		Momentum: 0.30,
	}
}

// Validate checks if weights sum to 1.0 within floating point error
func (w *WeightConfig) Validate() bool {
	sum := w.Quality + w.Value + w.Momentum
	return sum >= 0.99 && sum <= 1.01
}

// industryStat holds per-peer-group valuation statistics, recomputed
// from scratch on every scoring run.
type industryStat struct {
	Mean  float64
	Std   float64
	Count int
}

// Engine computes peer-relative and cross-sectional scores and the
// final weighted composite over an already-filtered table.
type Engine struct {
	weights WeightConfig
	log     *logger.Logger
}

// NewEngine creates a scoring engine
func NewEngine(weights WeightConfig, log *logger.Logger) *Engine {
	return &Engine{
		weights: weights,
		log:     log.WithField("component", "scoring"),
	}
}

// Score derives the full scored table: value-trap flags, peer-relative
// valuation Z-scores, factor percentiles, and the weighted composite,
// sorted descending by final score with ranks assigned. All statistics
// are relative to the given population only. Deterministic: re-scoring
// the same input yields identical output.
func (e *Engine) Score(records []contracts.EntityRecord) contracts.ScoredTable {
	if len(records) == 0 {
		return contracts.ScoredTable{}
	}

	table := make(contracts.ScoredTable, len(records))
	for i, rec := range records {
		table[i] = contracts.ScoredRecord{EntityRecord: rec}
		table[i].IsValueTrap = isValueTrap(rec.Fundamentals)
		table[i].ValuationMetric = valuationMetric(rec.Fundamentals)
	}

	industry := e.industryStats(table)
	popMean, popStd := populationStats(table)
	for i := range table {
		table[i].ValuationZScore = e.zScore(&table[i], industry, popMean, popStd)
	}

	e.applyValueScores(table)
	e.applyQualityScores(table)
	e.applyMomentumScores(table)

	for i := range table {
		composite := stats.Round(
			e.weights.Quality*table[i].QualityScore+
				e.weights.Value*table[i].ValueScore+
				e.weights.Momentum*table[i].MomentumScore, 1)
		if table[i].IsValueTrap {
			composite *= 0.5
		}
		table[i].FinalScore = composite
	}

	sort.SliceStable(table, func(i, j int) bool {
		return table[i].FinalScore > table[j].FinalScore
	})
	for i := range table {
		table[i].Rank = i + 1
	}

	e.log.WithFields(map[string]interface{}{
		"total":      len(table),
		"top_symbol": table[0].Symbol,
		"top_score":  table[0].FinalScore,
	}).Info("Scoring completed")

	return table
}

// isValueTrap flags cheap entities whose earnings are shrinking: a low
// multiple paired with negative growth is cheap for a likely-bad reason.
func isValueTrap(f contracts.FundamentalsSnapshot) bool {
	pe := contracts.FloatOr(f.PERatio, missingPE)
	growth := contracts.FloatOr(f.EarningsGrowth, 0)
	return pe < valueTrapPE && growth < 0
}

// valuationMetric prefers EV/EBITDA, falls back to P/E, and ends at a
// fixed penalty when both are missing.
func valuationMetric(f contracts.FundamentalsSnapshot) float64 {
	if f.EVToEBITDA != nil && !math.IsNaN(*f.EVToEBITDA) {
		return *f.EVToEBITDA
	}
	if f.PERatio != nil && !math.IsNaN(*f.PERatio) {
		return *f.PERatio
	}
	return missingValuation
}

// industryStats groups valuation metrics by industry label, bucketing
// missing labels under "Unknown".
func (e *Engine) industryStats(table contracts.ScoredTable) map[string]industryStat {
	groups := make(map[string][]float64)
	for i := range table {
		label := industryLabel(&table[i].EntityRecord)
		groups[label] = append(groups[label], table[i].ValuationMetric)
	}

	result := make(map[string]industryStat, len(groups))
	for label, values := range groups {
		result[label] = industryStat{
			Mean:  stats.Mean(values),
			Std:   stats.StdDev(values),
			Count: len(values),
		}
	}
	return result
}

func industryLabel(rec *contracts.EntityRecord) string {
	if rec.Industry() == "" {
		return "Unknown"
	}
	return rec.Industry()
}

func populationStats(table contracts.ScoredTable) (mean, std float64) {
	values := make([]float64, len(table))
	for i := range table {
		values[i] = table[i].ValuationMetric
	}
	return stats.Mean(values), stats.StdDev(values)
}

// zScore normalizes a row's valuation metric against its industry peers
// when the group is large enough to be meaningful, otherwise against
// the whole population.
func (e *Engine) zScore(rec *contracts.ScoredRecord, industry map[string]industryStat, popMean, popStd float64) float64 {
	if math.IsNaN(rec.ValuationMetric) {
		return missingZScore
	}

	group := industry[industryLabel(&rec.EntityRecord)]
	if group.Count >= minPeerGroup && group.Std > 0 {
		return (rec.ValuationMetric - group.Mean) / group.Std
	}
	if popStd > 0 {
		return (rec.ValuationMetric - popMean) / popStd
	}
	return 0
}

// applyValueScores ranks Z-scores ascending and inverts the rank into a
// percentile: the cheapest entity lands nearest 100.
func (e *Engine) applyValueScores(table contracts.ScoredTable) {
	zscores := make([]float64, len(table))
	for i := range table {
		zscores[i] = table[i].ValuationZScore
	}

	ranks := averageRanks(zscores)
	n := float64(len(table))
	for i := range table {
		table[i].ValueScore = 100 - (ranks[i]/n)*100
	}
}

// applyQualityScores averages the ranks of the quality trifecta:
// capital efficiency, cash conversion, and balance-sheet safety.
// Higher is better for all three, so ascending rank maps the best
// values to the top percentile.
func (e *Engine) applyQualityScores(table contracts.ScoredTable) {
	efficiency := make([]float64, len(table))
	cashConv := make([]float64, len(table))
	safety := make([]float64, len(table))

	for i := range table {
		f := table[i].Fundamentals

		if f.ROIC != nil {
			efficiency[i] = *f.ROIC
		} else {
			efficiency[i] = contracts.FloatOr(f.ROE, 0)
		}

		if f.FreeCashFlow != nil && f.NetIncome != nil && *f.NetIncome > 0 {
			cashConv[i] = *f.FreeCashFlow / *f.NetIncome
		}

		safety[i] = contracts.FloatOr(f.InterestCoverage, 0)
	}

	effRanks := averageRanks(efficiency)
	cashRanks := averageRanks(cashConv)
	safetyRanks := averageRanks(safety)

	n := float64(len(table))
	for i := range table {
		avgRank := (effRanks[i] + cashRanks[i] + safetyRanks[i]) / 3
		table[i].QualityScore = (avgRank / n) * 100
	}
}

// applyMomentumScores ranks risk-adjusted momentum ascending; entities
// with no momentum data rank below every real observation.
func (e *Engine) applyMomentumScores(table contracts.ScoredTable) {
	momentum := make([]float64, len(table))
	for i := range table {
		momentum[i] = contracts.FloatOr(table[i].RiskAdjMomentum, missingMomentum)
	}

	ranks := averageRanks(momentum)
	n := float64(len(table))
	for i := range table {
		table[i].MomentumScore = (ranks[i] / n) * 100
	}
}

// averageRanks assigns ascending 1-based ranks with ties receiving the
// average of the rank positions they span. Keeps percentile outputs
// deterministic and reproducible across runs.
func averageRanks(values []float64) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[order[j+1]] == values[order[i]] {
			j++
		}
		// Positions i..j (0-based) share the average of ranks i+1..j+1
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}
	return ranks
}
