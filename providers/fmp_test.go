package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quitrk/stock-checker-sub001/models"
)

func newFMPTestServer(t *testing.T, gradesStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/profile/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[
			{"symbol": "ACAD", "companyName": "Acadia Pharmaceuticals", "industry": "Biotechnology",
			 "price": 21.37, "mktCap": 3500000000, "volAvg": 1200000, "beta": 0.8,
			 "image": "https://images.example.com/ACAD.png"},
			{"symbol": "SRPT", "companyName": "Sarepta Therapeutics", "industry": "Biotechnology",
			 "price": 120.5, "mktCap": 11000000000, "volAvg": 900000, "beta": 1.1, "image": ""}
		]`))
	})
	mux.HandleFunc("/api/v3/historical/earning_calendar/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[
			{"date": "2026-11-04", "eps": null, "epsEstimated": -0.12},
			{"date": "2026-08-05", "eps": 0.08, "epsEstimated": 0.05}
		]`))
	})
	mux.HandleFunc("/api/v3/historical-price-full/stock_dividend/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"symbol": "ACAD", "historical": [
			{"date": "2026-09-10", "paymentDate": "2026-09-25", "dividend": 0.25}
		]}`))
	})
	mux.HandleFunc("/api/v3/upgrades-downgrades", func(w http.ResponseWriter, _ *http.Request) {
		if gradesStatus != http.StatusOK {
			http.Error(w, "boom", gradesStatus)
			return
		}
		w.Write([]byte(`[
			{"publishedDate": "2026-02-03T08:31:00.000Z", "newGrade": "Overweight",
			 "previousGrade": "Equal-Weight", "gradingCompany": "Morgan Stanley", "action": "upgrade"}
		]`))
	})
	return httptest.NewServer(mux)
}

func TestFMPGetMultipleQuotes(t *testing.T) {
	server := newFMPTestServer(t, http.StatusOK)
	defer server.Close()

	p := NewFMPProvider("test-key", server.URL)
	quotes, err := p.GetMultipleQuotes(context.Background(), []string{"ACAD", "SRPT", "UNKNOWN"})
	require.NoError(t, err)

	require.Len(t, quotes, 2)
	acad := quotes["ACAD"]
	assert.Equal(t, "Acadia Pharmaceuticals", acad.CompanyName)
	assert.Equal(t, "Biotechnology", acad.Industry)
	assert.Equal(t, 21.37, acad.Price)
	assert.Equal(t, "https://images.example.com/ACAD.png", acad.LogoURL)

	_, ok := quotes["UNKNOWN"]
	assert.False(t, ok, "symbols unknown upstream are absent, not zero-valued")
}

func TestFMPGetMultipleQuotesEmptyInput(t *testing.T) {
	p := NewFMPProvider("test-key", "http://127.0.0.1:0")
	quotes, err := p.GetMultipleQuotes(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestFMPCatalystEventsMapping(t *testing.T) {
	server := newFMPTestServer(t, http.StatusOK)
	defer server.Close()

	p := NewFMPProvider("test-key", server.URL)
	events, err := p.CatalystEvents(context.Background(), CatalystRequest{
		Symbol: "acad", CompanyName: "Acadia Pharmaceuticals", Industry: "Biotechnology",
	})
	require.NoError(t, err)

	counts := map[models.EventType]int{}
	for _, ev := range events {
		counts[ev.Type]++
		assert.Equal(t, "ACAD", ev.Symbol)
		assert.Equal(t, SourceFMP, ev.Source)
	}
	assert.Equal(t, 2, counts[models.EventEarningsReport])
	assert.Equal(t, 1, counts[models.EventExDividend])
	assert.Equal(t, 1, counts[models.EventDividendPayment])
	assert.Equal(t, 1, counts[models.EventAnalystRating])

	// A future earnings date without reported EPS is an estimate.
	for _, ev := range events {
		if ev.Type == models.EventEarningsReport && ev.Date == "2026-11-04" {
			assert.True(t, ev.IsEstimate)
		}
		if ev.Type == models.EventEarningsReport && ev.Date == "2026-08-05" {
			assert.False(t, ev.IsEstimate)
		}
		if ev.Type == models.EventAnalystRating {
			assert.Equal(t, "2026-02-03", ev.Date, "timestamp collapses to calendar date")
		}
	}
}

func TestFMPCatalystEventsPartialFailure(t *testing.T) {
	server := newFMPTestServer(t, http.StatusInternalServerError)
	defer server.Close()

	p := NewFMPProvider("test-key", server.URL)
	events, err := p.CatalystEvents(context.Background(), CatalystRequest{
		Symbol: "ACAD", CompanyName: "Acadia Pharmaceuticals",
	})

	// Grades endpoint is down, but earnings and dividends still mapped.
	require.NoError(t, err)
	assert.NotEmpty(t, events)
	for _, ev := range events {
		assert.NotEqual(t, models.EventAnalystRating, ev.Type)
	}
}

func TestFMPCatalystEventsTotalFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	p := NewFMPProvider("test-key", server.URL)
	events, err := p.CatalystEvents(context.Background(), CatalystRequest{Symbol: "ACAD"})

	require.Error(t, err)
	assert.Empty(t, events)
}

func TestValidISODate(t *testing.T) {
	assert.True(t, validISODate("2026-03-14"))
	assert.False(t, validISODate("2026-3-14"))
	assert.False(t, validISODate("20260314"))
	assert.False(t, validISODate(""))
	assert.False(t, validISODate("2026-03-1x"))
}
