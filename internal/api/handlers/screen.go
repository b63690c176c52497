package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/SaChIn5419/stock-screener/internal/pipeline"
	"github.com/SaChIn5419/stock-screener/pkg/logger"
)

// ScreenHandler exposes the screening pipeline over HTTP
type ScreenHandler struct {
	screener *pipeline.Screener
	workers  int
	logger   *logger.Logger
}

// NewScreenHandler creates a screen handler
func NewScreenHandler(screener *pipeline.Screener, workers int, log *logger.Logger) *ScreenHandler {
	return &ScreenHandler{
		screener: screener,
		workers:  workers,
		logger:   log,
	}
}

// Run executes a screening run
// GET /api/screen?mode=nifty50|all&top=N
func (h *ScreenHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mode := r.URL.Query().Get("mode")

	table, err := h.screener.Screen(ctx, mode, h.workers)
	if err != nil {
		h.logger.WithError(err).Error("Screen run failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if top := r.URL.Query().Get("top"); top != "" {
		n, err := strconv.Atoi(top)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "top must be a positive integer")
			return
		}
		table = table.Top(n)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(table),
		"results": table,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
