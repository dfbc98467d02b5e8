package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/quitrk/stock-checker-sub001/api"
	"github.com/quitrk/stock-checker-sub001/cache"
	"github.com/quitrk/stock-checker-sub001/catalyst"
	"github.com/quitrk/stock-checker-sub001/checklist"
	"github.com/quitrk/stock-checker-sub001/config"
	"github.com/quitrk/stock-checker-sub001/database"
	"github.com/quitrk/stock-checker-sub001/providers"
	"github.com/quitrk/stock-checker-sub001/watchlist"
)

// App represents the main application
type App struct {
	config *config.Config
	redis  *cache.RedisStore
	db     *database.Database
	server *http.Server
}

// New creates a new application instance
func New(cfg *config.Config) *App {
	return &App{config: cfg}
}

// Start wires the pipeline and runs the HTTP server until interrupted.
func (a *App) Start() error {
	// 1. Cache backend. Redis outage degrades to an in-process store, never
	// to a hard failure.
	fmt.Println("🧠 Connecting to Redis...")
	var store cache.Store
	a.redis = cache.NewRedisStore(a.config.RedisHost, a.config.RedisPort, a.config.RedisPassword)
	if a.redis == nil {
		fmt.Println("⚠️  Redis unavailable, falling back to in-memory cache")
		store = cache.NewMemoryStore()
	} else {
		store = a.redis
	}

	// 2. Database. Only the watchlist needs it; the catalyst pipeline keeps
	// working without it.
	fmt.Println("🗄️  Connecting to database...")
	var watchlistRepo *watchlist.Repository
	dbPort, err := strconv.Atoi(a.config.DatabasePort)
	if err != nil {
		return fmt.Errorf("invalid database port: %w", err)
	}
	db, err := database.Connect(
		a.config.DatabaseHost,
		dbPort,
		a.config.DatabaseName,
		a.config.DatabaseUser,
		a.config.DatabasePassword,
	)
	if err != nil {
		log.Printf("⚠️  Database unavailable, watchlist disabled: %v", err)
	} else {
		a.db = db
		watchlistRepo, err = watchlist.NewRepository(db)
		if err != nil {
			return fmt.Errorf("watchlist setup failed: %w", err)
		}
	}

	// 3. Catalyst sources
	pcfg := a.config.Providers
	fmp := providers.NewFMPProvider(pcfg.FMPAPIKey, pcfg.FMPBaseURL)
	trials := providers.NewClinicalTrialsProvider(pcfg.ClinicalTrialsBaseURL)
	fda := providers.NewFDAProvider(pcfg.FDABaseURL)
	finnhub := providers.NewFinnhubProvider(pcfg.FinnhubAPIKey, pcfg.FinnhubBaseURL)
	if finnhub.Configured() {
		log.Println("✅ Finnhub market-events source ENABLED")
	} else {
		log.Println("ℹ️  Finnhub market-events source DISABLED (no API key)")
	}

	// 4. Reconciliation pipeline
	engine := catalyst.NewEngine(catalyst.DefaultRegistry(fmp, trials, fda, finnhub)...)
	locks := cache.NewKeyedMutex()
	ttl := time.Duration(a.config.ChecklistTTLMinutes) * time.Minute
	coordinator := catalyst.NewCoordinator(engine, fmp, store, locks, ttl)
	checklists := checklist.NewService(engine, fmp, store, locks, ttl)

	// 5. HTTP server
	server := api.NewServer(coordinator, checklists, watchlistRepo)
	a.server = &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", a.config.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 API Server starting on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// 6. Wait for interrupt and perform graceful shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("API server failed: %w", err)
	case <-interrupt:
	}

	fmt.Println("\n🛑 Shutdown signal received, initiating graceful shutdown...")
	return a.shutdown()
}

// shutdown stops the HTTP server and closes external connections, bounded by
// a timeout.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  HTTP shutdown error: %v", err)
	} else {
		fmt.Println("✅ HTTP server stopped")
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		} else {
			fmt.Println("✅ Database connection closed")
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("Error closing redis: %v", err)
		} else {
			fmt.Println("✅ Redis connection closed")
		}
	}

	fmt.Println("✅ Graceful shutdown completed")
	return nil
}
