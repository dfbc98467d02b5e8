package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quitrk/stock-checker-sub001/models"
)

const defaultFinnhubBaseURL = "https://finnhub.io"

// FinnhubProvider is the market-events source (stock splits). Finnhub has no
// unauthenticated tier, so the adapter is skipped entirely when no API key is
// configured. A missing credential is a disabled feature, not a failure.
type FinnhubProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewFinnhubProvider creates the adapter. baseURL is overridable for tests.
func NewFinnhubProvider(apiKey, baseURL string) *FinnhubProvider {
	if baseURL == "" {
		baseURL = defaultFinnhubBaseURL
	}
	return &FinnhubProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  newHTTPClient(),
	}
}

func (p *FinnhubProvider) Name() string { return SourceFinnhub }

// Configured reports whether the adapter has credentials and is worth querying.
func (p *FinnhubProvider) Configured() bool { return p.apiKey != "" }

type finnhubSplit struct {
	Symbol     string  `json:"symbol"`
	Date       string  `json:"date"`
	FromFactor float64 `json:"fromFactor"`
	ToFactor   float64 `json:"toFactor"`
}

// CatalystEvents maps Finnhub's split calendar (one year back, one year
// forward) onto stock-split events.
func (p *FinnhubProvider) CatalystEvents(ctx context.Context, req CatalystRequest) ([]models.CatalystEvent, error) {
	if !p.Configured() {
		return nil, nil
	}

	now := time.Now().UTC()
	from := now.AddDate(-1, 0, 0).Format("2006-01-02")
	to := now.AddDate(1, 0, 0).Format("2006-01-02")

	sym := strings.ToUpper(req.Symbol)
	endpoint := fmt.Sprintf("%s/api/v1/stock/split?symbol=%s&from=%s&to=%s&token=%s",
		p.baseURL, url.QueryEscape(sym), from, to, url.QueryEscape(p.apiKey))

	var splits []finnhubSplit
	if err := getJSON(ctx, p.client, endpoint, &splits); err != nil {
		return nil, fmt.Errorf("finnhub splits: %w", err)
	}

	var events []models.CatalystEvent
	for _, s := range splits {
		if !validISODate(s.Date) || s.FromFactor <= 0 || s.ToFactor <= 0 {
			continue
		}
		direction := "Forward"
		if s.ToFactor < s.FromFactor {
			direction = "Reverse"
		}
		events = append(events, models.CatalystEvent{
			ID:          models.NewEventID(SourceFinnhub, sym, models.EventStockSplit, s.Date),
			Symbol:      sym,
			Type:        models.EventStockSplit,
			Date:        s.Date,
			Title:       fmt.Sprintf("%s %g-for-%g stock split", sym, s.ToFactor, s.FromFactor),
			Description: fmt.Sprintf("%s split, %g-for-%g.", direction, s.ToFactor, s.FromFactor),
			Source:      SourceFinnhub,
			Metadata: map[string]string{
				"fromFactor": fmt.Sprintf("%g", s.FromFactor),
				"toFactor":   fmt.Sprintf("%g", s.ToFactor),
			},
		})
	}
	return events, nil
}
