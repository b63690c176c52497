package contracts

// ScoredRecord is an EntityRecord plus the columns the scoring engine
// derives. Derived columns never overwrite extraction inputs.
type ScoredRecord struct {
	EntityRecord

	ValuationMetric float64 `json:"valuation_metric"`
	ValuationZScore float64 `json:"valuation_z_score"`
	IsValueTrap     bool    `json:"is_value_trap"`

	ValueScore    float64 `json:"value_score"`
	QualityScore  float64 `json:"quality_score"`
	MomentumScore float64 `json:"momentum_score"`
	FinalScore    float64 `json:"final_score"`

	Rank int `json:"rank"`
}

// ScoredTable is the ranked output of the scoring engine,
// ordered by final score descending.
type ScoredTable []ScoredRecord

// Top returns the first n records (or fewer if the table is smaller)
func (t ScoredTable) Top(n int) ScoredTable {
	if n > len(t) {
		n = len(t)
	}
	return t[:n]
}
