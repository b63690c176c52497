package marketdata

import (
	"context"

	"github.com/SaChIn5419/stock-screener/internal/contracts"
)

// Provider fetches per-symbol market data. Implementations must be safe
// for concurrent use; the orchestrator calls them from multiple workers.
type Provider interface {
	// FetchHistory returns the daily price history for a symbol over the
	// configured lookback window, oldest first.
	FetchHistory(ctx context.Context, symbol string) (contracts.HistorySeries, error)

	// FetchFundamentals returns the fundamentals snapshot for a symbol.
	// Missing fields are nil, not an error; an error means the entity is
	// unusable for this run.
	FetchFundamentals(ctx context.Context, symbol string) (contracts.FundamentalsSnapshot, error)
}
