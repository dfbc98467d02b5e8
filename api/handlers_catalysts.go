package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/quitrk/stock-checker-sub001/models"
)

type catalystsResponse struct {
	Catalysts []models.CatalystEvent `json:"catalysts"`
}

// handleGetCatalysts serves GET /api/catalysts?symbols=A,B,C, the merged
// catalyst timeline across the requested symbols. Malformed requests are
// rejected before any pipeline work.
func (s *Server) handleGetCatalysts(w http.ResponseWriter, r *http.Request) {
	symbols := splitSymbols(r.URL.Query().Get("symbols"))
	if len(symbols) == 0 {
		respondWithError(w, http.StatusBadRequest, "missing or invalid symbols parameter", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	events, err := s.coordinator.CatalystEventsForSymbols(ctx, symbols)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to aggregate catalyst events", err)
		return
	}

	respondJSON(w, http.StatusOK, catalystsResponse{Catalysts: events})
}

// handleGetChecklist serves GET /api/checklist/{symbol}. ?refresh=true
// bypasses the cache.
func (s *Server) handleGetChecklist(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(r.PathValue("symbol"))
	if symbol == "" {
		respondWithError(w, http.StatusBadRequest, "missing symbol", nil)
		return
	}
	skipCache := r.URL.Query().Get("refresh") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := s.checklists.GenerateChecklist(ctx, symbol, skipCache)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to generate checklist", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func splitSymbols(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var symbols []string
	for _, part := range strings.Split(raw, ",") {
		if sym := strings.TrimSpace(part); sym != "" {
			symbols = append(symbols, sym)
		}
	}
	return symbols
}
