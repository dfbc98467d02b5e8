package catalyst

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quitrk/stock-checker-sub001/models"
	"github.com/quitrk/stock-checker-sub001/providers"
)

// fakeProvider is a scriptable CatalystProvider for engine tests.
type fakeProvider struct {
	name   string
	events []models.CatalystEvent
	err    error
	calls  atomic.Int64
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) CatalystEvents(_ context.Context, _ providers.CatalystRequest) ([]models.CatalystEvent, error) {
	f.calls.Add(1)
	return f.events, f.err
}

func always(providers.CatalystRequest) bool { return true }

func biotechOnly(req providers.CatalystRequest) bool {
	return providers.IsBiotechIndustry(req.Industry)
}

func TestEngineMergesAllApplicableSources(t *testing.T) {
	fmp := &fakeProvider{name: providers.SourceFMP, events: []models.CatalystEvent{
		event("ACAD", models.EventEarningsReport, "2026-05-05", providers.SourceFMP, ""),
	}}
	fda := &fakeProvider{name: providers.SourceFDA, events: []models.CatalystEvent{
		event("ACAD", models.EventApproval, "2026-03-14", providers.SourceFDA, ""),
	}}

	engine := NewEngine(
		Registration{Provider: fmp, Applies: always},
		Registration{Provider: fda, Applies: always},
	)

	events, failures := engine.CatalystEvents(context.Background(), "ACAD", "Acadia Pharmaceuticals", "Biotechnology")

	assert.Empty(t, failures)
	require.Len(t, events, 2)
	assert.Equal(t, "2026-03-14", events[0].Date)
	assert.Equal(t, "2026-05-05", events[1].Date)
}

func TestEngineSkipsInapplicableSources(t *testing.T) {
	trials := &fakeProvider{name: providers.SourceClinicalTrials}
	engine := NewEngine(Registration{Provider: trials, Applies: biotechOnly})

	engine.CatalystEvents(context.Background(), "JPM", "JPMorgan Chase", "Banks - Diversified")
	assert.Equal(t, int64(0), trials.calls.Load())

	engine.CatalystEvents(context.Background(), "ACAD", "Acadia Pharmaceuticals", "Biotechnology")
	assert.Equal(t, int64(1), trials.calls.Load())
}

func TestEngineAbsorbsSourceFailure(t *testing.T) {
	// A broken clinical-trials source must not abort the aggregate.
	trials := &fakeProvider{name: providers.SourceClinicalTrials, err: errors.New("upstream 503")}
	fmp := &fakeProvider{name: providers.SourceFMP, events: []models.CatalystEvent{
		event("ACAD", models.EventEarningsReport, "2026-05-05", providers.SourceFMP, ""),
	}}

	engine := NewEngine(
		Registration{Provider: fmp, Applies: always},
		Registration{Provider: trials, Applies: biotechOnly},
	)

	events, failures := engine.CatalystEvents(context.Background(), "ACAD", "Acadia Pharmaceuticals", "Biotechnology")

	require.Len(t, events, 1)
	require.Len(t, failures, 1)
	assert.Equal(t, providers.SourceClinicalTrials, failures[0].Source)
	assert.ErrorContains(t, failures[0].Err, "upstream 503")
}

func TestEngineDeduplicatesAcrossSources(t *testing.T) {
	fmp := &fakeProvider{name: providers.SourceFMP, events: []models.CatalystEvent{
		event("ACAD", models.EventApproval, "2026-03-14", providers.SourceFMP, "thin quote-feed record"),
	}}
	fda := &fakeProvider{name: providers.SourceFDA, events: []models.CatalystEvent{
		event("ACAD", models.EventApproval, "2026-03-14", providers.SourceFDA, "authoritative"),
	}}

	engine := NewEngine(
		Registration{Provider: fmp, Applies: always},
		Registration{Provider: fda, Applies: always},
	)

	events, _ := engine.CatalystEvents(context.Background(), "ACAD", "Acadia Pharmaceuticals", "Biotechnology")

	require.Len(t, events, 1)
	assert.Equal(t, providers.SourceFDA, events[0].Source)
}

func TestEngineZeroEventsIsNotAnError(t *testing.T) {
	empty := &fakeProvider{name: providers.SourceFMP}
	engine := NewEngine(Registration{Provider: empty, Applies: always})

	events, failures := engine.CatalystEvents(context.Background(), "ACAD", "Acadia Pharmaceuticals", "Biotechnology")

	assert.Empty(t, events)
	assert.Empty(t, failures)
}
