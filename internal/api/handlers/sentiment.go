package handlers

import (
	"net/http"

	"github.com/SaChIn5419/stock-screener/internal/sentiment"
)

// SentimentHandler exposes the aggregate market mood
type SentimentHandler struct {
	service *sentiment.Service
}

// NewSentimentHandler creates a sentiment handler
func NewSentimentHandler(service *sentiment.Service) *SentimentHandler {
	return &SentimentHandler{service: service}
}

// Get returns the current market mood
// GET /api/sentiment
func (h *SentimentHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.MarketMood(r.Context()))
}
