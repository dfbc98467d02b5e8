package catalyst

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/quitrk/stock-checker-sub001/metrics"
	"github.com/quitrk/stock-checker-sub001/models"
	"github.com/quitrk/stock-checker-sub001/providers"
)

// SourceFailure records one adapter's absorbed failure. Failures never fail a
// reconciliation; they ride alongside the partial result so callers can log or
// count them.
type SourceFailure struct {
	Source string
	Err    error
}

// Registration pairs a provider with its applicability predicate. The engine
// walks an ordered registry instead of hardcoding per-source logic, so adding
// a source is additive.
type Registration struct {
	Provider providers.CatalystProvider
	Applies  func(req providers.CatalystRequest) bool
}

// Engine fans a symbol out across all applicable catalyst sources and
// reconciles the answers into one deduplicated, date-ordered timeline.
type Engine struct {
	registry []Registration
}

// NewEngine creates an engine over the given registry.
func NewEngine(registry ...Registration) *Engine {
	return &Engine{registry: registry}
}

// DefaultRegistry wires the four production sources with their applicability
// rules: fmp and fda are always queried, clinicaltrials only for biotech-like
// industries, finnhub only when credentials are configured.
func DefaultRegistry(fmp *providers.FMPProvider, trials *providers.ClinicalTrialsProvider, fda *providers.FDAProvider, finnhub *providers.FinnhubProvider) []Registration {
	always := func(providers.CatalystRequest) bool { return true }
	return []Registration{
		{Provider: fmp, Applies: always},
		{Provider: fda, Applies: always},
		{Provider: trials, Applies: func(req providers.CatalystRequest) bool {
			return providers.IsBiotechIndustry(req.Industry)
		}},
		{Provider: finnhub, Applies: func(providers.CatalystRequest) bool {
			return finnhub.Configured()
		}},
	}
}

// CatalystEvents queries every applicable source concurrently and returns the
// reconciled timeline. A zero-event result is a legitimate outcome, not an
// error; absorbed per-source failures are returned for observability.
func (e *Engine) CatalystEvents(ctx context.Context, symbol, companyName, industry string) ([]models.CatalystEvent, []SourceFailure) {
	metrics.ReconcileInFlight.Inc()
	defer metrics.ReconcileInFlight.Dec()
	start := time.Now()
	defer func() { metrics.ReconcileDuration.Observe(time.Since(start).Seconds()) }()

	req := providers.CatalystRequest{
		Symbol:      symbol,
		CompanyName: companyName,
		Industry:    industry,
	}

	var applicable []providers.CatalystProvider
	for _, reg := range e.registry {
		if reg.Applies(req) {
			applicable = append(applicable, reg.Provider)
		}
	}

	// Fan out. Results are collected by registry position so adapter
	// completion order never leaks into the output; the final ordering comes
	// from Reconcile alone.
	results := make([][]models.CatalystEvent, len(applicable))
	failures := make([]*SourceFailure, len(applicable))

	var wg sync.WaitGroup
	for i, p := range applicable {
		wg.Add(1)
		go func(i int, p providers.CatalystProvider) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("❌ Catalyst source %s panicked for %s: %v", p.Name(), symbol, r)
					metrics.ProviderErrors.WithLabelValues(p.Name()).Inc()
				}
			}()

			metrics.ProviderRequests.WithLabelValues(p.Name()).Inc()
			events, err := p.CatalystEvents(ctx, req)
			if err != nil {
				// One broken source must not abort the aggregate.
				failures[i] = &SourceFailure{Source: p.Name(), Err: err}
				metrics.ProviderErrors.WithLabelValues(p.Name()).Inc()
				return
			}
			results[i] = events
		}(i, p)
	}
	wg.Wait()

	var candidates []models.CatalystEvent
	for _, events := range results {
		candidates = append(candidates, events...)
	}

	var absorbed []SourceFailure
	for _, f := range failures {
		if f != nil {
			log.Printf("⚠️  Catalyst source %s failed for %s: %v", f.Source, symbol, f.Err)
			absorbed = append(absorbed, *f)
		}
	}

	return Reconcile(candidates), absorbed
}
