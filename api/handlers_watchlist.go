package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// handleGetWatchlist serves GET /api/watchlist.
func (s *Server) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	if s.watchlist == nil {
		respondWithError(w, http.StatusServiceUnavailable, "watchlist storage unavailable", nil)
		return
	}

	entries, err := s.watchlist.List()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list watchlist", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// handleAddWatchlistEntry serves POST /api/watchlist with body {"symbol": "ACAD"}.
func (s *Server) handleAddWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	if s.watchlist == nil {
		respondWithError(w, http.StatusServiceUnavailable, "watchlist storage unavailable", nil)
		return
	}

	var body struct {
		Symbol string `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Symbol) == "" {
		respondWithError(w, http.StatusBadRequest, "missing or invalid symbol", err)
		return
	}

	entry, err := s.watchlist.Add(body.Symbol)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to add watchlist entry", err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

// handleRemoveWatchlistEntry serves DELETE /api/watchlist/{symbol}.
func (s *Server) handleRemoveWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	if s.watchlist == nil {
		respondWithError(w, http.StatusServiceUnavailable, "watchlist storage unavailable", nil)
		return
	}

	symbol := strings.TrimSpace(r.PathValue("symbol"))
	if symbol == "" {
		respondWithError(w, http.StatusBadRequest, "missing symbol", nil)
		return
	}

	if err := s.watchlist.Remove(symbol); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to remove watchlist entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetWatchlistCatalysts serves GET /api/watchlist/catalysts, the merged
// timeline across every watched symbol.
func (s *Server) handleGetWatchlistCatalysts(w http.ResponseWriter, r *http.Request) {
	if s.watchlist == nil {
		respondWithError(w, http.StatusServiceUnavailable, "watchlist storage unavailable", nil)
		return
	}

	symbols, err := s.watchlist.Symbols()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list watchlist", err)
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
