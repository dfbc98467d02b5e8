package catalyst

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/quitrk/stock-checker-sub001/cache"
	"github.com/quitrk/stock-checker-sub001/models"
	"github.com/quitrk/stock-checker-sub001/providers"
)

// batchSize bounds how many per-symbol reconciliations run at once. Batches
// run strictly in sequence; within a batch all members run concurrently.
const batchSize = 3

// Reconciler is the per-symbol reconciliation path the coordinator fans out
// over. Satisfied by *Engine.
type Reconciler interface {
	CatalystEvents(ctx context.Context, symbol, companyName, industry string) ([]models.CatalystEvent, []SourceFailure)
}

// Coordinator resolves catalyst timelines for many symbols at once, exploiting
// per-symbol cache state to skip redundant network work and keeping the cached
// checklist records consistent as symbols resolve.
type Coordinator struct {
	engine Reconciler
	quotes providers.QuoteProvider
	store  cache.Store
	locks  *cache.KeyedMutex
	ttl    time.Duration
}

// NewCoordinator creates a coordinator. ttl applies to checklist records the
// coordinator writes or rewrites.
func NewCoordinator(engine Reconciler, quotes providers.QuoteProvider, store cache.Store, locks *cache.KeyedMutex, ttl time.Duration) *Coordinator {
	return &Coordinator{
		engine: engine,
		quotes: quotes,
		store:  store,
		locks:  locks,
		ttl:    ttl,
	}
}

// CatalystEventsForSymbols returns the merged, deduplicated, date-ordered
// catalyst timeline across all given symbols.
//
// Symbols whose cached checklist record already carries catalyst state are
// served from cache without any network call; an empty-but-present event list
// is trusted, not refetched. The remaining symbols share one batched quote
// lookup and are reconciled in sequential batches of three. A failed batched
// quote lookup fails the whole request: without company context no adapter
// selection is possible for the uncached set.
func (c *Coordinator) CatalystEventsForSymbols(ctx context.Context, symbols []string) ([]models.CatalystEvent, error) {
	symbols = normalizeSymbols(symbols)
	if len(symbols) == 0 {
		return []models.CatalystEvent{}, nil
	}

	var aggregate []models.CatalystEvent
	var uncached []string
	for _, sym := range symbols {
		key := cache.Key(cache.CategoryChecklist, sym)
		var rec models.ChecklistResult
		if c.store.Get(ctx, key, &rec) && rec.HasCatalystEvents() {
			aggregate = append(aggregate, rec.CatalystEvents...)
			continue
		}
		uncached = append(uncached, sym)
	}

	if len(uncached) == 0 {
		return Reconcile(aggregate), nil
	}

	quotes, err := c.quotes.GetMultipleQuotes(ctx, uncached)
	if err != nil {
		return nil, fmt.Errorf("batched quote lookup failed: %w", err)
	}

	var mu sync.Mutex
	for start := 0; start < len(uncached); start += batchSize {
		end := start + batchSize
		if end > len(uncached) {
			end = len(uncached)
		}

		var wg sync.WaitGroup
		for _, sym := range uncached[start:end] {
			quote, ok := quotes[sym]
			if !ok {
				// No company context, so no adapter selection. The symbol
				// contributes nothing but does not fail the batch.
				log.Printf("⚠️  No quote data for %s, skipping catalyst fetch", sym)
				continue
			}

			wg.Add(1)
			go func(sym string, quote models.Quote) {
				defer wg.Done()

				events, _ := c.engine.CatalystEvents(ctx, sym, quote.CompanyName, quote.Industry)
				c.patchCachedEvents(ctx, sym, quote, events)

				mu.Lock()
				aggregate = append(aggregate, events...)
				mu.Unlock()
			}(sym, quote)
		}
		wg.Wait()
	}

	// Cross-symbol duplicates are only theoretical, but reusing the same
	// routine keeps single- and multi-symbol results consistent.
	return Reconcile(aggregate), nil
}

// patchCachedEvents updates the checklist record for a freshly resolved
// symbol. An existing record keeps all its snapshot fields and only gets its
// catalyst list replaced; when no record exists a minimal partial one is
// synthesized so a later full checklist generation can fill the rest.
func (c *Coordinator) patchCachedEvents(ctx context.Context, symbol string, quote models.Quote, events []models.CatalystEvent) {
	if events == nil {
		// Store present-but-empty: "we looked, nothing there" must be
		// distinguishable from "never looked".
		events = []models.CatalystEvent{}
	}

	key := cache.Key(cache.CategoryChecklist, symbol)
	c.locks.Lock(key)
	defer c.locks.Unlock(key)

	var rec models.ChecklistResult
	if c.store.Get(ctx, key, &rec) {
		rec.CatalystEvents = events
		c.store.Set(ctx, key, rec, c.ttl)
		return
	}

	rec = models.ChecklistResult{
		Symbol:         symbol,
		CompanyName:    quote.CompanyName,
		Industry:       quote.Industry,
		CatalystEvents: events,
		Timestamp:      time.Now().UTC(),
	}
	c.store.Set(ctx, key, rec, c.ttl)
}

// normalizeSymbols uppercases, trims and uniques the requested symbols while
// preserving request order.
func normalizeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(s))
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}
