package checklist

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/quitrk/stock-checker-sub001/cache"
	"github.com/quitrk/stock-checker-sub001/catalyst"
	"github.com/quitrk/stock-checker-sub001/models"
	"github.com/quitrk/stock-checker-sub001/providers"
)

// Service generates per-symbol checklists: a market snapshot plus the
// reconciled catalyst timeline, cached as one record. The coordinator patches
// the same record's catalyst field; everything else in it belongs here.
type Service struct {
	engine catalyst.Reconciler
	quotes providers.QuoteProvider
	store  cache.Store
	locks  *cache.KeyedMutex
	ttl    time.Duration
}

// NewService creates a checklist service sharing the coordinator's cache
// store and keyed mutex so writes to the same symbol are serialized.
func NewService(engine catalyst.Reconciler, quotes providers.QuoteProvider, store cache.Store, locks *cache.KeyedMutex, ttl time.Duration) *Service {
	return &Service{
		engine: engine,
		quotes: quotes,
		store:  store,
		locks:  locks,
		ttl:    ttl,
	}
}

// GenerateChecklist returns the checklist for one symbol, read-through on the
// cache unless skipCache forces a rebuild.
func (s *Service) GenerateChecklist(ctx context.Context, symbol string, skipCache bool) (*models.ChecklistResult, error) {
	key := cache.Key(cache.CategoryChecklist, symbol)

	if !skipCache {
		var rec models.ChecklistResult
		if s.store.Get(ctx, key, &rec) {
			return &rec, nil
		}
	}

	quotes, err := s.quotes.GetMultipleQuotes(ctx, []string{symbol})
	if err != nil {
		return nil, fmt.Errorf("quote lookup failed for %s: %w", symbol, err)
	}
	quote, ok := quotes[strings.ToUpper(symbol)]
	if !ok {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}

	events, failures := s.engine.CatalystEvents(ctx, quote.Symbol, quote.CompanyName, quote.Industry)
	if len(failures) > 0 {
		log.Printf("⚠️  Checklist for %s built with %d degraded catalyst sources", quote.Symbol, len(failures))
	}
	if events == nil {
		events = []models.CatalystEvent{}
	}

	rec := models.ChecklistResult{
		Symbol:         quote.Symbol,
		CompanyName:    quote.CompanyName,
		Industry:       quote.Industry,
		Price:          quote.Price,
		MarketCap:      quote.MarketCap,
		AvgVolume:      quote.AvgVolume,
		Beta:           quote.Beta,
		CatalystEvents: events,
		Timestamp:      time.Now().UTC(),
	}

	s.locks.Lock(key)
	s.store.Set(ctx, key, rec, s.ttl)
	s.locks.Unlock(key)

	if quote.LogoURL != "" {
		// Logos are immutable once fetched; no expiry.
		s.store.Set(ctx, cache.Key(cache.CategoryLogo, quote.Symbol), quote.LogoURL, cache.NoExpiry)
	}

	return &rec, nil
}
