package accounting

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/models/store"
	"github.com/de-tools/ops-atlas/pkg/services/credentials"
	"github.com/de-tools/ops-atlas/pkg/store/client"
)

const (
	Upstream         = "xero"
	IdentityUpstream = "xero-identity"

	DefaultBaseURL = "https://api.xero.com/api.xro/2.0"

	dateLayout = "2006-01-02"
)

// Client reads ledgers and reports for a single tenant.
type Client interface {
	Invoices(ctx context.Context, status string) ([]store.Invoice, error)
	BalanceSheet(ctx context.Context, date string) (map[string]any, error)
	ProfitAndLoss(ctx context.Context, from, to string) (map[string]any, error)
	Accounts(ctx context.Context) ([]store.Account, error)
}

type Config struct {
	BaseURL  string
	TenantID string
	// Provider issues the bearer credential; it is acquired before every call.
	Provider   credentials.Provider
	Now        func() time.Time
	HTTPClient *http.Client
}

type xeroClient struct {
	cfg Config
}

func NewClient(cfg Config) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = client.NewHTTPClient(Upstream, client.DefaultTimeout)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &xeroClient{cfg: cfg}
}

func (c *xeroClient) Invoices(ctx context.Context, status string) ([]store.Invoice, error) {
	query := url.Values{}
	if status != "" {
		query.Set("Statuses", status)
	}

	var resp store.InvoicesResponse
	if err := c.get(ctx, "Invoices", query, &resp); err != nil {
		return nil, err
	}
	return resp.Invoices, nil
}

// BalanceSheet returns the raw report as of date, or today when date is empty.
func (c *xeroClient) BalanceSheet(ctx context.Context, date string) (map[string]any, error) {
	if date == "" {
		date = c.cfg.Now().Format(dateLayout)
	}

	report := map[string]any{}
	if err := c.get(ctx, "Reports/BalanceSheet", url.Values{"date": {date}}, &report); err != nil {
		return nil, err
	}
	return report, nil
}

// ProfitAndLoss returns the raw report. The range defaults to the current
// year to date.
func (c *xeroClient) ProfitAndLoss(ctx context.Context, from, to string) (map[string]any, error) {
	now := c.cfg.Now()
	if from == "" {
		from = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()).Format(dateLayout)
	}
	if to == "" {
		to = now.Format(dateLayout)
	}

	report := map[string]any{}
	err := c.get(ctx, "Reports/ProfitAndLoss", url.Values{
		"fromDate": {from},
		"toDate":   {to},
	}, &report)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (c *xeroClient) Accounts(ctx context.Context) ([]store.Account, error) {
	var resp store.AccountsResponse
	if err := c.get(ctx, "Accounts", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

func (c *xeroClient) get(ctx context.Context, path string, query url.Values, out any) error {
	if c.cfg.TenantID == "" {
		return &domain.ConfigurationError{Field: "tenant_id"}
	}
	if c.cfg.Provider == nil {
		return &domain.ConfigurationError{Field: "refresh_token"}
	}

	cred, err := c.cfg.Provider.Acquire(ctx)
	if err != nil {
		return err
	}
	cred.TenantID = c.cfg.TenantID

	endpoint := c.cfg.BaseURL + "/" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", path, err)
	}
	cred.Apply(req)

	return client.GetJSON(ctx, c.cfg.HTTPClient, Upstream, req, out)
}
