package commerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/models/store"
	"github.com/de-tools/ops-atlas/pkg/store/client"
)

const (
	Upstream = "shopify"

	DefaultAPIVersion = "2024-01"
	DefaultLimit      = 50
	DefaultStatus     = "any"
	RevenueLimit      = 250
	RevenueWindow     = 30 * 24 * time.Hour

	accessTokenHeader = "X-Shopify-Access-Token"
)

// Client reads orders and products from the store admin API.
type Client interface {
	Orders(ctx context.Context, limit int, status string) ([]store.Order, error)
	Products(ctx context.Context, limit int) ([]store.Product, error)
	TodayOrderCount(ctx context.Context) (int, error)
	Revenue(ctx context.Context, since string) (Revenue, error)
}

type Revenue struct {
	Total float64
	Count int
}

type Config struct {
	StoreDomain string
	AdminToken  string
	APIVersion  string
	// BaseURL replaces https://{StoreDomain} when set.
	BaseURL    string
	Now        func() time.Time
	HTTPClient *http.Client
}

type shopifyClient struct {
	cfg Config
}

func NewClient(cfg Config) Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = client.NewHTTPClient(Upstream, client.DefaultTimeout)
	}
	return &shopifyClient{cfg: cfg}
}

func (c *shopifyClient) Orders(ctx context.Context, limit int, status string) ([]store.Order, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if status == "" {
		status = DefaultStatus
	}

	var resp store.OrdersResponse
	err := c.get(ctx, "orders.json", url.Values{
		"limit":  {strconv.Itoa(limit)},
		"status": {status},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (c *shopifyClient) Products(ctx context.Context, limit int) ([]store.Product, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var resp store.ProductsResponse
	if err := c.get(ctx, "products.json", url.Values{"limit": {strconv.Itoa(limit)}}, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// TodayOrderCount counts orders of any status created since local midnight.
func (c *shopifyClient) TodayOrderCount(ctx context.Context) (int, error) {
	now := c.cfg.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var resp store.CountResponse
	err := c.get(ctx, "orders/count.json", url.Values{
		"status":         {DefaultStatus},
		"created_at_min": {midnight.UTC().Format(time.RFC3339)},
	}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Revenue sums total_price over one page of paid orders created since since.
// An empty since covers the last 30 days.
func (c *shopifyClient) Revenue(ctx context.Context, since string) (Revenue, error) {
	if since == "" {
		since = c.cfg.Now().Add(-RevenueWindow).UTC().Format(time.RFC3339)
	}

	var resp store.OrdersResponse
	err := c.get(ctx, "orders.json", url.Values{
		"limit":            {strconv.Itoa(RevenueLimit)},
		"status":           {DefaultStatus},
		"financial_status": {"paid"},
		"created_at_min":   {since},
	}, &resp)
	if err != nil {
		return Revenue{}, err
	}

	var total float64
	for _, o := range resp.Orders {
		price, err := strconv.ParseFloat(o.TotalPrice, 64)
		if err != nil {
			continue
		}
		total += price
	}
	return Revenue{Total: total, Count: len(resp.Orders)}, nil
}

func (c *shopifyClient) get(ctx context.Context, path string, query url.Values, out any) error {
	base, err := c.baseURL()
	if err != nil {
		return err
	}
	if c.cfg.AdminToken == "" {
		return &domain.ConfigurationError{Field: "admin_token"}
	}

	endpoint := fmt.Sprintf("%s/admin/api/%s/%s?%s", base, c.cfg.APIVersion, path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", path, err)
	}
	req.Header.Set(accessTokenHeader, c.cfg.AdminToken)
	req.Header.Set("Content-Type", "application/json")

	return client.GetJSON(ctx, c.cfg.HTTPClient, Upstream, req, out)
}

func (c *shopifyClient) baseURL() (string, error) {
	if c.cfg.BaseURL != "" {
		return strings.TrimRight(c.cfg.BaseURL, "/"), nil
	}
	if c.cfg.StoreDomain == "" {
		return "", &domain.ConfigurationError{Field: "store_domain"}
	}
	return "https://" + c.cfg.StoreDomain, nil
}
