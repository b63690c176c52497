package universe

import (
	"fmt"

	"github.com/SaChIn5419/stock-screener/internal/contracts"
	"github.com/SaChIn5419/stock-screener/pkg/logger"
)

// Filter narrows the candidate set to liquid, investable names before
// the scoring stage runs.
type Filter struct {
	config Config
	log    *logger.Logger
}

// Config holds universe filter criteria
type Config struct {
	MinMarketCap float64 // minimum market capitalization
	MinPrice     float64 // minimum current price
}

// NewFilter creates a universe Filter
func NewFilter(config Config, log *logger.Logger) *Filter {
	return &Filter{
		config: config,
		log:    log.WithField("component", "universe"),
	}
}

// Result holds the filtered records plus the exclusion reason for every
// record that did not make the cut, keyed by symbol.
type Result struct {
	Records  []contracts.EntityRecord
	Excluded map[string]string
}

// Apply filters records against the size and price floors. Records with
// no market cap reported are excluded rather than given a pass.
func (f *Filter) Apply(records []contracts.EntityRecord) Result {
	result := Result{
		Records:  make([]contracts.EntityRecord, 0, len(records)),
		Excluded: make(map[string]string),
	}

	for _, rec := range records {
		reason := f.checkExclusion(rec)
		if reason != "" {
			result.Excluded[rec.Symbol] = reason
			continue
		}
		result.Records = append(result.Records, rec)
	}

	f.log.WithFields(map[string]interface{}{
		"input":    len(records),
		"passed":   len(result.Records),
		"excluded": len(result.Excluded),
	}).Info("Universe filter applied")

	return result
}

// checkExclusion returns the first reason a record fails, or "" on pass.
// Both floors are inclusive.
func (f *Filter) checkExclusion(rec contracts.EntityRecord) string {
	if rec.Fundamentals.MarketCap == nil {
		return "market cap unavailable"
	}
	if *rec.Fundamentals.MarketCap < f.config.MinMarketCap {
		return fmt.Sprintf("market cap below floor (%.0f)", *rec.Fundamentals.MarketCap)
	}
	if rec.CurrentPrice < f.config.MinPrice {
		return fmt.Sprintf("price below floor (%.2f)", rec.CurrentPrice)
	}
	return ""
}
