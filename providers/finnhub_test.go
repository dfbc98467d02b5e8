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

func TestFinnhubConfigured(t *testing.T) {
	assert.False(t, NewFinnhubProvider("", "").Configured())
	assert.True(t, NewFinnhubProvider("key", "").Configured())
}

func TestFinnhubUnconfiguredIsSilentNoop(t *testing.T) {
	p := NewFinnhubProvider("", "http://127.0.0.1:0")
	events, err := p.CatalystEvents(context.Background(), CatalystRequest{Symbol: "ACAD"})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFinnhubMapsSplits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ACAD", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		w.Write([]byte(`[
			{"symbol": "ACAD", "date": "2026-04-01", "fromFactor": 1, "toFactor": 4},
			{"symbol": "ACAD", "date": "2025-10-15", "fromFactor": 10, "toFactor": 1},
			{"symbol": "ACAD", "date": "bad", "fromFactor": 1, "toFactor": 2}
		]`))
	}))
	defer server.Close()

	p := NewFinnhubProvider("test-key", server.URL)
	events, err := p.CatalystEvents(context.Background(), CatalystRequest{Symbol: "acad"})
	require.NoError(t, err)
	require.Len(t, events, 2)

	forward := events[0]
	assert.Equal(t, models.EventStockSplit, forward.Type)
	assert.Equal(t, "2026-04-01", forward.Date)
	assert.Contains(t, forward.Title, "4-for-1")
	assert.Contains(t, forward.Description, "Forward")

	reverse := events[1]
	assert.Equal(t, "2025-10-15", reverse.Date)
	assert.Contains(t, reverse.Description, "Reverse")
}
