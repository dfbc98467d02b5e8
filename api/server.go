package api

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quitrk/stock-checker-sub001/catalyst"
	"github.com/quitrk/stock-checker-sub001/checklist"
	"github.com/quitrk/stock-checker-sub001/watchlist"
)

// requestTimeout caps the pipeline time per request so one stalled external
// source cannot wedge a connection forever.
const requestTimeout = 30 * time.Second

// Server handles HTTP API requests
type Server struct {
	coordinator *catalyst.Coordinator
	checklists  *checklist.Service
	watchlist   *watchlist.Repository // nil when the database is unavailable
}

// NewServer creates a new API server instance. watchlistRepo may be nil, in
// which case the watchlist routes respond 503.
func NewServer(coordinator *catalyst.Coordinator, checklists *checklist.Service, watchlistRepo *watchlist.Repository) *Server {
	return &Server{
		coordinator: coordinator,
		checklists:  checklists,
		watchlist:   watchlistRepo,
	}
}

// Handler builds the route table. Split out from Start for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Catalyst pipeline routes
	mux.HandleFunc("GET /api/catalysts", s.handleGetCatalysts)
	mux.HandleFunc("GET /api/checklist/{symbol}", s.handleGetChecklist)

	// Watchlist routes
	mux.HandleFunc("GET /api/watchlist", s.handleGetWatchlist)
	mux.HandleFunc("POST /api/watchlist", s.handleAddWatchlistEntry)
	mux.HandleFunc("DELETE /api/watchlist/{symbol}", s.handleRemoveWatchlistEntry)
	mux.HandleFunc("GET /api/watchlist/catalysts", s.handleGetWatchlistCatalysts)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", s.handleHealth)

	// Add middleware
	return s.corsMiddleware(s.loggingMiddleware(mux))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}
