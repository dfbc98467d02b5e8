package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/quitrk/stock-checker-sub001/models"
)

const defaultClinicalTrialsBaseURL = "https://clinicaltrials.gov"

// biotechMarkers classifies an industry string as biotech/pharma-like, i.e.
// worth querying a clinical-trials source for.
var biotechMarkers = []string{
	"biotech",
	"pharmaceutical",
	"drug manufacturers",
	"life sciences",
	"medical research",
}

// IsBiotechIndustry reports whether the clinical-trials source applies to a
// company in the given industry.
func IsBiotechIndustry(industry string) bool {
	lower := strings.ToLower(industry)
	for _, marker := range biotechMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ClinicalTrialsProvider maps ClinicalTrials.gov v2 study records onto trial
// catalysts. Studies are looked up by sponsor name, so the adapter needs the
// company name from the quote snapshot; a ticker alone is not enough.
type ClinicalTrialsProvider struct {
	baseURL string
	client  *http.Client
}

// NewClinicalTrialsProvider creates the adapter. baseURL is overridable for tests.
func NewClinicalTrialsProvider(baseURL string) *ClinicalTrialsProvider {
	if baseURL == "" {
		baseURL = defaultClinicalTrialsBaseURL
	}
	return &ClinicalTrialsProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(),
	}
}

func (p *ClinicalTrialsProvider) Name() string { return SourceClinicalTrials }

type ctGovDate struct {
	Date string `json:"date"` // YYYY, YYYY-MM or YYYY-MM-DD
	Type string `json:"type"` // ACTUAL or ESTIMATED
}

type ctGovResponse struct {
	Studies []struct {
		ProtocolSection struct {
			IdentificationModule struct {
				NCTID      string `json:"nctId"`
				BriefTitle string `json:"briefTitle"`
			} `json:"identificationModule"`
			StatusModule struct {
				OverallStatus         string    `json:"overallStatus"`
				PrimaryCompletionDate ctGovDate `json:"primaryCompletionDateStruct"`
				CompletionDate        ctGovDate `json:"completionDateStruct"`
			} `json:"statusModule"`
			DesignModule struct {
				Phases []string `json:"phases"`
			} `json:"designModule"`
		} `json:"protocolSection"`
	} `json:"studies"`
}

// CatalystEvents fetches active studies sponsored by the company and emits a
// data-readout event per primary completion date plus a trial-milestone event
// per study completion date.
func (p *ClinicalTrialsProvider) CatalystEvents(ctx context.Context, req CatalystRequest) ([]models.CatalystEvent, error) {
	if req.CompanyName == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf(
		"%s/api/v2/studies?query.spons=%s&filter.overallStatus=RECRUITING|ACTIVE_NOT_RECRUITING|ENROLLING_BY_INVITATION&pageSize=25",
		p.baseURL, url.QueryEscape(req.CompanyName))

	var payload ctGovResponse
	if err := getJSON(ctx, p.client, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("clinicaltrials studies: %w", err)
	}

	sym := strings.ToUpper(req.Symbol)
	var events []models.CatalystEvent
	for _, study := range payload.Studies {
		proto := study.ProtocolSection
		phase := phaseLabel(proto.DesignModule.Phases)
		meta := map[string]string{
			"nctId":  proto.IdentificationModule.NCTID,
			"status": proto.StatusModule.OverallStatus,
		}
		if phase != "" {
			meta["phase"] = phase
		}

		if ev, ok := p.trialEvent(sym, models.EventDataReadout, proto.StatusModule.PrimaryCompletionDate,
			fmt.Sprintf("%s primary data readout", proto.IdentificationModule.NCTID),
			fmt.Sprintf("Primary completion of %s (%s): %s.", proto.IdentificationModule.NCTID, phase, proto.IdentificationModule.BriefTitle),
			meta); ok {
			events = append(events, ev)
		}
		if ev, ok := p.trialEvent(sym, models.EventTrialMilestone, proto.StatusModule.CompletionDate,
			fmt.Sprintf("%s study completion", proto.IdentificationModule.NCTID),
			fmt.Sprintf("Study completion of %s: %s.", proto.IdentificationModule.NCTID, proto.IdentificationModule.BriefTitle),
			meta); ok {
			events = append(events, ev)
		}
	}
	return events, nil
}

func (p *ClinicalTrialsProvider) trialEvent(symbol string, t models.EventType, d ctGovDate, title, desc string, meta map[string]string) (models.CatalystEvent, bool) {
	date, estimate, ok := normalizePartialDate(d.Date)
	if !ok {
		return models.CatalystEvent{}, false
	}
	return models.CatalystEvent{
		ID:          models.NewEventID(SourceClinicalTrials, symbol, t, date),
		Symbol:      symbol,
		Type:        t,
		Date:        date,
		IsEstimate:  estimate || d.Type == "ESTIMATED",
		Title:       title,
		Description: desc,
		Source:      SourceClinicalTrials,
		Metadata:    meta,
	}, true
}

// normalizePartialDate pads ClinicalTrials.gov partial dates (YYYY or YYYY-MM)
// to a full ISO date; a padded date is by definition an estimate.
func normalizePartialDate(s string) (date string, estimate bool, ok bool) {
	switch len(s) {
	case 10:
		if validISODate(s) {
			return s, false, true
		}
	case 7:
		if validISODate(s + "-01") {
			return s + "-01", true, true
		}
	case 4:
		if validISODate(s + "-01-01") {
			return s + "-01-01", true, true
		}
	}
	return "", false, false
}

func phaseLabel(phases []string) string {
	if len(phases) == 0 {
		return ""
	}
	// Upstream encodes phases as PHASE1, PHASE2... with NA for non-phased studies.
	label := strings.Join(phases, "/")
	label = strings.ReplaceAll(label, "PHASE", "Phase ")
	return label
}
