package checklist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quitrk/stock-checker-sub001/cache"
	"github.com/quitrk/stock-checker-sub001/catalyst"
	"github.com/quitrk/stock-checker-sub001/models"
)

type fakeEngine struct {
	mu     sync.Mutex
	events []models.CatalystEvent
	calls  int
}

func (f *fakeEngine) CatalystEvents(_ context.Context, _, _, _ string) ([]models.CatalystEvent, []catalyst.SourceFailure) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.events, nil
}

type fakeQuotes struct {
	mu     sync.Mutex
	quotes map[string]models.Quote
	calls  int
	err    error
}

func (f *fakeQuotes) GetMultipleQuotes(_ context.Context, symbols []string) (map[string]models.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]models.Quote)
	for _, s := range symbols {
		if q, ok := f.quotes[s]; ok {
			out[s] = q
		}
	}
	return out, nil
}

func acadQuote() models.Quote {
	return models.Quote{
		Symbol:      "ACAD",
		CompanyName: "Acadia Pharmaceuticals",
		Industry:    "Biotechnology",
		Price:       21.37,
		MarketCap:   3.5e9,
		LogoURL:     "https://images.example.com/ACAD.png",
	}
}

func newTestService(engine *fakeEngine, quotes *fakeQuotes, store cache.Store) *Service {
	return NewService(engine, quotes, store, cache.NewKeyedMutex(), time.Hour)
}

func TestGenerateChecklistBuildsAndCaches(t *testing.T) {
	store := cache.NewMemoryStore()
	engine := &fakeEngine{events: []models.CatalystEvent{{
		Symbol: "ACAD", Type: models.EventApproval, Date: "2026-03-14", Source: "fda",
	}}}
	quotes := &fakeQuotes{quotes: map[string]models.Quote{"ACAD": acadQuote()}}
	svc := newTestService(engine, quotes, store)

	result, err := svc.GenerateChecklist(context.Background(), "acad", false)
	require.NoError(t, err)

	assert.Equal(t, "ACAD", result.Symbol)
	assert.Equal(t, "Acadia Pharmaceuticals", result.CompanyName)
	assert.Equal(t, 21.37, result.Price)
	require.Len(t, result.CatalystEvents, 1)
	assert.False(t, result.Timestamp.IsZero())

	// Record is stored, logo cached separately without expiry.
	var rec models.ChecklistResult
	assert.True(t, store.Get(context.Background(), cache.Key(cache.CategoryChecklist, "ACAD"), &rec))
	var logo string
	assert.True(t, store.Get(context.Background(), cache.Key(cache.CategoryLogo, "ACAD"), &logo))
	assert.Equal(t, "https://images.example.com/ACAD.png", logo)
}

func TestGenerateChecklistReadsThrough(t *testing.T) {
	store := cache.NewMemoryStore()
	engine := &fakeEngine{}
	quotes := &fakeQuotes{quotes: map[string]models.Quote{"ACAD": acadQuote()}}
	svc := newTestService(engine, quotes, store)

	_, err := svc.GenerateChecklist(context.Background(), "ACAD", false)
	require.NoError(t, err)
	_, err = svc.GenerateChecklist(context.Background(), "ACAD", false)
	require.NoError(t, err)

	assert.Equal(t, 1, quotes.calls, "second call must be served from cache")
	assert.Equal(t, 1, engine.calls)
}

func TestGenerateChecklistSkipCacheRebuilds(t *testing.T) {
	store := cache.NewMemoryStore()
	engine := &fakeEngine{}
	quotes := &fakeQuotes{quotes: map[string]models.Quote{"ACAD": acadQuote()}}
	svc := newTestService(engine, quotes, store)

	_, err := svc.GenerateChecklist(context.Background(), "ACAD", false)
	require.NoError(t, err)
	_, err = svc.GenerateChecklist(context.Background(), "ACAD", true)
	require.NoError(t, err)

	assert.Equal(t, 2, quotes.calls)
	assert.Equal(t, 2, engine.calls)
}

func TestGenerateChecklistQuoteFailure(t *testing.T) {
	engine := &fakeEngine{}
	quotes := &fakeQuotes{err: errors.New("provider down")}
	svc := newTestService(engine, quotes, cache.NewMemoryStore())

	_, err := svc.GenerateChecklist(context.Background(), "ACAD", false)
	require.Error(t, err)
	assert.ErrorContains(t, err, "provider down")
}

func TestGenerateChecklistUnknownSymbol(t *testing.T) {
	engine := &fakeEngine{}
	quotes := &fakeQuotes{quotes: map[string]models.Quote{}}
	svc := newTestService(engine, quotes, cache.NewMemoryStore())

	_, err := svc.GenerateChecklist(context.Background(), "ZZZZ", false)
	require.Error(t, err)
	assert.ErrorContains(t, err, "no quote data")
}

func TestGenerateChecklistStoresEmptyEventsAsPresent(t *testing.T) {
	store := cache.NewMemoryStore()
	engine := &fakeEngine{} // nil events
	quotes := &fakeQuotes{quotes: map[string]models.Quote{"ACAD": acadQuote()}}
	svc := newTestService(engine, quotes, store)

	result, err := svc.GenerateChecklist(context.Background(), "ACAD", false)
	require.NoError(t, err)
	assert.True(t, result.HasCatalystEvents())

	var rec models.ChecklistResult
	require.True(t, store.Get(context.Background(), cache.Key(cache.CategoryChecklist, "ACAD"), &rec))
	assert.True(t, rec.HasCatalystEvents(), "empty event list must round-trip as present")
}
