package providers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/quitrk/stock-checker-sub001/models"
)

const defaultFMPBaseURL = "https://financialmodelingprep.com"

// FMPProvider is the quote/market-data source (Financial Modeling Prep). It
// doubles as the batched QuoteProvider used by the coordinator and contributes
// earnings, dividend and analyst-rating catalysts.
type FMPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewFMPProvider creates the FMP adapter. baseURL is overridable for tests.
func NewFMPProvider(apiKey, baseURL string) *FMPProvider {
	if baseURL == "" {
		baseURL = defaultFMPBaseURL
	}
	return &FMPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  newHTTPClient(),
	}
}

func (p *FMPProvider) Name() string { return SourceFMP }

type fmpProfile struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Industry    string  `json:"industry"`
	Price       float64 `json:"price"`
	MarketCap   float64 `json:"mktCap"`
	AvgVolume   float64 `json:"volAvg"`
	Beta        float64 `json:"beta"`
	Image       string  `json:"image"`
}

// GetMultipleQuotes fetches company profiles for all symbols in one batched
// call. Symbols unknown to FMP are simply absent from the returned map.
func (p *FMPProvider) GetMultipleQuotes(ctx context.Context, symbols []string) (map[string]models.Quote, error) {
	if len(symbols) == 0 {
		return map[string]models.Quote{}, nil
	}

	endpoint := fmt.Sprintf("%s/api/v3/profile/%s?apikey=%s",
		p.baseURL, strings.Join(symbols, ","), url.QueryEscape(p.apiKey))

	var profiles []fmpProfile
	if err := getJSON(ctx, p.client, endpoint, &profiles); err != nil {
		return nil, fmt.Errorf("fmp profile lookup: %w", err)
	}

	quotes := make(map[string]models.Quote, len(profiles))
	for _, pr := range profiles {
		sym := strings.ToUpper(pr.Symbol)
		quotes[sym] = models.Quote{
			Symbol:      sym,
			CompanyName: pr.CompanyName,
			Industry:    pr.Industry,
			Price:       pr.Price,
			MarketCap:   pr.MarketCap,
			AvgVolume:   pr.AvgVolume,
			Beta:        pr.Beta,
			LogoURL:     pr.Image,
		}
	}
	return quotes, nil
}

type fmpEarnings struct {
	Date             string   `json:"date"`
	EPS              *float64 `json:"eps"`
	EPSEstimated     *float64 `json:"epsEstimated"`
	Revenue          *float64 `json:"revenue"`
	RevenueEstimated *float64 `json:"revenueEstimated"`
}

type fmpDividendHistory struct {
	Historical []struct {
		Date        string  `json:"date"` // ex-dividend date
		PaymentDate string  `json:"paymentDate"`
		Dividend    float64 `json:"dividend"`
	} `json:"historical"`
}

type fmpGrade struct {
	PublishedDate  string `json:"publishedDate"`
	NewGrade       string `json:"newGrade"`
	PreviousGrade  string `json:"previousGrade"`
	GradingCompany string `json:"gradingCompany"`
	Action         string `json:"action"`
}

// CatalystEvents maps FMP's earnings calendar, dividend history and analyst
// grade changes onto catalyst events. The three endpoints fail independently:
// events from endpoints that succeeded are kept, and an error is returned only
// when every endpoint failed.
func (p *FMPProvider) CatalystEvents(ctx context.Context, req CatalystRequest) ([]models.CatalystEvent, error) {
	sym := strings.ToUpper(req.Symbol)
	var events []models.CatalystEvent
	var errs []error

	var earnings []fmpEarnings
	earnURL := fmt.Sprintf("%s/api/v3/historical/earning_calendar/%s?limit=8&apikey=%s",
		p.baseURL, sym, url.QueryEscape(p.apiKey))
	if err := getJSON(ctx, p.client, earnURL, &earnings); err != nil {
		errs = append(errs, fmt.Errorf("fmp earnings: %w", err))
	}
	for _, e := range earnings {
		if !validISODate(e.Date) {
			continue
		}
		desc := fmt.Sprintf("Earnings report for %s.", req.CompanyName)
		if e.EPSEstimated != nil {
			desc += fmt.Sprintf(" Consensus EPS estimate %.2f.", *e.EPSEstimated)
		}
		if e.EPS != nil {
			desc += fmt.Sprintf(" Reported EPS %.2f.", *e.EPS)
		}
		events = append(events, models.CatalystEvent{
			ID:          models.NewEventID(SourceFMP, sym, models.EventEarningsReport, e.Date),
			Symbol:      sym,
			Type:        models.EventEarningsReport,
			Date:        e.Date,
			IsEstimate:  e.EPS == nil,
			Title:       fmt.Sprintf("%s earnings report", sym),
			Description: desc,
			Source:      SourceFMP,
		})
	}

	var dividends fmpDividendHistory
	divURL := fmt.Sprintf("%s/api/v3/historical-price-full/stock_dividend/%s?apikey=%s",
		p.baseURL, sym, url.QueryEscape(p.apiKey))
	if err := getJSON(ctx, p.client, divURL, &dividends); err != nil {
		errs = append(errs, fmt.Errorf("fmp dividends: %w", err))
	}
	for i, d := range dividends.Historical {
		if i >= 4 {
			break
		}
		if validISODate(d.Date) {
			events = append(events, models.CatalystEvent{
				ID:          models.NewEventID(SourceFMP, sym, models.EventExDividend, d.Date),
				Symbol:      sym,
				Type:        models.EventExDividend,
				Date:        d.Date,
				Title:       fmt.Sprintf("%s ex-dividend date", sym),
				Description: fmt.Sprintf("Ex-dividend date, %.4f per share.", d.Dividend),
				Source:      SourceFMP,
			})
		}
		if validISODate(d.PaymentDate) {
			events = append(events, models.CatalystEvent{
				ID:          models.NewEventID(SourceFMP, sym, models.EventDividendPayment, d.PaymentDate),
				Symbol:      sym,
				Type:        models.EventDividendPayment,
				Date:        d.PaymentDate,
				Title:       fmt.Sprintf("%s dividend payment", sym),
				Description: fmt.Sprintf("Dividend payment, %.4f per share.", d.Dividend),
				Source:      SourceFMP,
			})
		}
	}

	var grades []fmpGrade
	gradeURL := fmt.Sprintf("%s/api/v3/upgrades-downgrades?symbol=%s&apikey=%s",
		p.baseURL, sym, url.QueryEscape(p.apiKey))
	if err := getJSON(ctx, p.client, gradeURL, &grades); err != nil {
		errs = append(errs, fmt.Errorf("fmp grades: %w", err))
	}
	for i, g := range grades {
		if i >= 5 {
			break
		}
		date := g.PublishedDate
		if len(date) > 10 {
			date = date[:10]
		}
		if !validISODate(date) {
			continue
		}
		events = append(events, models.CatalystEvent{
			ID:          models.NewEventID(SourceFMP, sym, models.EventAnalystRating, date),
			Symbol:      sym,
			Type:        models.EventAnalystRating,
			Date:        date,
			Title:       fmt.Sprintf("%s rated %s by %s", sym, g.NewGrade, g.GradingCompany),
			Description: fmt.Sprintf("%s: %s to %s by %s.", g.Action, g.PreviousGrade, g.NewGrade, g.GradingCompany),
			Source:      SourceFMP,
			Metadata:    map[string]string{"gradingCompany": g.GradingCompany, "action": g.Action},
		})
	}

	if len(errs) == 3 {
		return nil, errors.Join(errs...)
	}
	for _, err := range errs {
		log.Printf("⚠️  Partial FMP failure for %s: %v", sym, err)
	}
	return events, nil
}

// validISODate checks for a zero-padded YYYY-MM-DD string.
func validISODate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, c := range s {
		if i == 4 || i == 7 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
