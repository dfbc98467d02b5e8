package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quitrk/stock-checker-sub001/models"
)

// Source names and their reconciliation priority. When two sources report the
// same (symbol, type, date) event, the higher-priority source wins.
const (
	SourceFDA            = "fda"
	SourceClinicalTrials = "clinicaltrials"
	SourceFinnhub        = "finnhub"
	SourceFMP            = "fmp"
)

const (
	PriorityFDA            = 4
	PriorityClinicalTrials = 3
	PriorityFinnhub        = 2
	PriorityFMP            = 1
)

// CatalystRequest carries the company context an adapter needs to query its
// upstream. CompanyName matters for sources keyed by sponsor rather than
// ticker (ClinicalTrials.gov, openFDA).
type CatalystRequest struct {
	Symbol      string
	CompanyName string
	Industry    string
}

// CatalystProvider is implemented once per external source. Implementations
// return an error on any upstream failure; the reconciliation engine absorbs
// it and substitutes an empty result. Adapters own their client-side
// throttling and must serialize outbound calls even under concurrent callers.
type CatalystProvider interface {
	Name() string
	CatalystEvents(ctx context.Context, req CatalystRequest) ([]models.CatalystEvent, error)
}

// QuoteProvider is the batched market-snapshot lookup used by the coordinator
// to establish company context for uncached symbols.
type QuoteProvider interface {
	GetMultipleQuotes(ctx context.Context, symbols []string) (map[string]models.Quote, error)
}

// newHTTPClient builds the shared transport configuration for all adapters.
func newHTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   15 * time.Second,
	}
}

// getJSON issues a GET and decodes the response body into dest. Non-2xx
// statuses are errors; bodies are capped to keep a misbehaving upstream from
// exhausting memory.
func getJSON(ctx context.Context, client *http.Client, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	return nil
}
