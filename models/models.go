package models

import (
	"fmt"
	"time"
)

// EventType classifies a catalyst event. The set is closed: providers map
// whatever their upstream returns onto one of these or drop the record.
type EventType string

const (
	EventPDUFADate          EventType = "pdufa_date"
	EventAdvisoryCommittee  EventType = "advisory_committee"
	EventApproval           EventType = "approval"
	EventRejection          EventType = "rejection"
	EventSpecialDesignation EventType = "special_designation"
	EventApplicationFiling  EventType = "application_filing"
	EventTrialPhase         EventType = "trial_phase"
	EventDataReadout        EventType = "data_readout"
	EventTrialMilestone     EventType = "trial_milestone"
	EventEarningsReport     EventType = "earnings_report"
	EventEarningsCall       EventType = "earnings_call"
	EventExDividend         EventType = "ex_dividend"
	EventDividendPayment    EventType = "dividend_payment"
	EventStockSplit         EventType = "stock_split"
	EventAnalystRating      EventType = "analyst_rating"
	EventInsiderTransaction EventType = "insider_transaction"
	EventExecutiveChange    EventType = "executive_change"
	EventAcquisition        EventType = "acquisition"
	EventPartnership        EventType = "partnership"
	EventRegulatoryFiling   EventType = "regulatory_filing"
)

// CatalystEvent is the canonical unit produced by the reconciliation pipeline.
// Date is a zero-padded ISO calendar date (YYYY-MM-DD) and doubles as the
// ordering key; (Symbol, Type, Date) is the deduplication identity.
type CatalystEvent struct {
	ID          string            `json:"id"`
	Symbol      string            `json:"symbol"`
	Type        EventType         `json:"eventType"`
	Date        string            `json:"date"`
	IsEstimate  bool              `json:"isEstimate"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Source      string            `json:"source"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// IdentityKey returns the (symbol, eventType, date) triple used to recognize
// the same event reported by different sources.
func (e CatalystEvent) IdentityKey() string {
	return fmt.Sprintf("%s|%s|%s", e.Symbol, e.Type, e.Date)
}

// NewEventID derives a source-qualified event id.
func NewEventID(source, symbol string, t EventType, date string) string {
	return fmt.Sprintf("%s:%s:%s:%s", source, symbol, t, date)
}

// Quote is the batched market snapshot returned by the quote provider. Only
// the fields the pipeline needs are mapped; the rest of the upstream payload
// is dropped at the adapter boundary.
type Quote struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Industry    string  `json:"industry"`
	Price       float64 `json:"price"`
	MarketCap   float64 `json:"marketCap"`
	AvgVolume   float64 `json:"avgVolume"`
	Beta        float64 `json:"beta"`
	LogoURL     string  `json:"logoUrl,omitempty"`
}

// ChecklistResult is the per-symbol cache record. The catalyst pipeline
// patches only CatalystEvents; everything else belongs to the checklist
// generator and must survive the patch untouched.
//
// CatalystEvents distinguishes nil (never fetched, needs a network pass)
// from an empty non-nil slice (fetched, genuinely no events, trusted cached
// state). JSON keeps the distinction as null vs [], so the invariant survives
// the Redis round trip.
type ChecklistResult struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Industry    string  `json:"industry"`
	Price       float64 `json:"price,omitempty"`
	MarketCap   float64 `json:"marketCap,omitempty"`
	AvgVolume   float64 `json:"avgVolume,omitempty"`
	Beta        float64 `json:"beta,omitempty"`

	CatalystEvents []CatalystEvent `json:"catalystEvents"`
	Timestamp      time.Time       `json:"timestamp"`
}

// HasCatalystEvents reports whether the record carries authoritative catalyst
// state. An empty non-nil slice counts: "we looked, there is nothing" is a
// valid cached answer, not a miss.
func (c *ChecklistResult) HasCatalystEvents() bool {
	return c != nil && c.CatalystEvents != nil
}
