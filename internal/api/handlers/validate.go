package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/SaChIn5419/stock-screener/internal/marketdata"
	"github.com/SaChIn5419/stock-screener/internal/quality"
	"github.com/SaChIn5419/stock-screener/pkg/logger"
)

// ValidateHandler runs the data-quality validator for one symbol, a
// diagnostic for "why was this entity skipped".
type ValidateHandler struct {
	provider  marketdata.Provider
	validator *quality.Validator
	logger    *logger.Logger
}

// NewValidateHandler creates a validate handler
func NewValidateHandler(provider marketdata.Provider, validator *quality.Validator, log *logger.Logger) *ValidateHandler {
	return &ValidateHandler{
		provider:  provider,
		validator: validator,
		logger:    log,
	}
}

// Check fetches a symbol's history and returns the quality verdict
// GET /api/validate/{symbol}
func (h *ValidateHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := mux.Vars(r)["symbol"]

	history, err := h.provider.FetchHistory(ctx, symbol)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Warn("History fetch failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	verdict := h.validator.Check(history)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"passed":  verdict.Passed,
		"reason":  verdict.Reason,
		"detail":  verdict.Detail,
		"points":  len(history),
	})
}
