package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/quitrk/stock-checker-sub001/models"
)

const defaultFDABaseURL = "https://api.fda.gov"

// fdaMinInterval is the minimum spacing between outbound openFDA requests.
// The unauthenticated tier rejects bursts well below its nominal per-minute
// quota, so the adapter serializes its own calls.
const fdaMinInterval = 200 * time.Millisecond

// FDAProvider is the regulatory-filing source (openFDA drugsfda). It ranks
// highest in reconciliation: when FDA and another source report the same
// event, the FDA record wins.
type FDAProvider struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewFDAProvider creates the adapter. baseURL is overridable for tests. The
// throttle is private to the instance; concurrent callers for different
// symbols still share it.
func NewFDAProvider(baseURL string) *FDAProvider {
	if baseURL == "" {
		baseURL = defaultFDABaseURL
	}
	return &FDAProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(),
		limiter: rate.NewLimiter(rate.Every(fdaMinInterval), 1),
	}
}

func (p *FDAProvider) Name() string { return SourceFDA }

type fdaResponse struct {
	Results []struct {
		ApplicationNumber string `json:"application_number"`
		SponsorName       string `json:"sponsor_name"`
		Submissions       []struct {
			SubmissionType       string `json:"submission_type"` // ORIG or SUPPL
			SubmissionNumber     string `json:"submission_number"`
			SubmissionStatus     string `json:"submission_status"` // AP, TA, ...
			SubmissionStatusDate string `json:"submission_status_date"`
			ClassDescription     string `json:"submission_class_code_description"`
		} `json:"submissions"`
		Products []struct {
			BrandName string `json:"brand_name"`
		} `json:"products"`
	} `json:"results"`
}

// CatalystEvents looks up drug applications by sponsor and maps submissions to
// approval / application-filing / regulatory-filing events.
func (p *FDAProvider) CatalystEvents(ctx context.Context, req CatalystRequest) ([]models.CatalystEvent, error) {
	if req.CompanyName == "" {
		return nil, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("fda throttle: %w", err)
	}

	search := fmt.Sprintf(`sponsor_name:%q`, sponsorQuery(req.CompanyName))
	endpoint := fmt.Sprintf("%s/drug/drugsfda.json?search=%s&limit=25",
		p.baseURL, url.QueryEscape(search))

	var payload fdaResponse
	if err := getJSON(ctx, p.client, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("fda drugsfda: %w", err)
	}

	sym := strings.ToUpper(req.Symbol)
	var events []models.CatalystEvent
	for _, app := range payload.Results {
		brand := ""
		if len(app.Products) > 0 {
			brand = app.Products[0].BrandName
		}
		for _, sub := range app.Submissions {
			date, ok := normalizeFDADate(sub.SubmissionStatusDate)
			if !ok {
				continue
			}

			var t models.EventType
			var title string
			switch {
			case sub.SubmissionStatus == "AP" && sub.SubmissionType == "ORIG":
				t = models.EventApproval
				title = fmt.Sprintf("FDA approval of %s", applicationLabel(app.ApplicationNumber, brand))
			case sub.SubmissionStatus == "AP":
				t = models.EventRegulatoryFiling
				title = fmt.Sprintf("FDA supplement approval for %s", applicationLabel(app.ApplicationNumber, brand))
			case sub.SubmissionType == "ORIG":
				t = models.EventApplicationFiling
				title = fmt.Sprintf("FDA application filing for %s", applicationLabel(app.ApplicationNumber, brand))
			default:
				continue
			}

			desc := fmt.Sprintf("%s submission %s for %s", sub.SubmissionType, sub.SubmissionNumber, app.ApplicationNumber)
			if sub.ClassDescription != "" {
				desc += " (" + sub.ClassDescription + ")"
			}
			if brand != "" {
				desc += fmt.Sprintf(", product %s", brand)
			}
			desc += "."

			events = append(events, models.CatalystEvent{
				ID:          models.NewEventID(SourceFDA, sym, t, date),
				Symbol:      sym,
				Type:        t,
				Date:        date,
				Title:       title,
				Description: desc,
				Source:      SourceFDA,
				Metadata: map[string]string{
					"applicationNumber": app.ApplicationNumber,
					"submissionStatus":  sub.SubmissionStatus,
				},
			})
		}
	}
	return events, nil
}

// normalizeFDADate converts openFDA's compact YYYYMMDD dates to ISO form.
func normalizeFDADate(s string) (string, bool) {
	if len(s) != 8 {
		return "", false
	}
	iso := s[:4] + "-" + s[4:6] + "-" + s[6:]
	if !validISODate(iso) {
		return "", false
	}
	return iso, true
}

// sponsorQuery strips corporate suffixes that openFDA sponsor records rarely
// carry, improving match rates for names like "Acadia Pharmaceuticals Inc.".
func sponsorQuery(companyName string) string {
	name := strings.TrimSpace(companyName)
	for _, suffix := range []string{", Inc.", " Inc.", ", Inc", " Inc", " Corp.", " Corp", " Ltd.", " Ltd", " plc", " PLC"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return name
}

func applicationLabel(applicationNumber, brand string) string {
	if brand != "" {
		return brand
	}
	return applicationNumber
}
