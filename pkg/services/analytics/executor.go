package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/models/store"
	"github.com/de-tools/ops-atlas/pkg/store/client"
	"github.com/rs/zerolog"
)

const DefaultBaseURL = "https://analyticsdata.googleapis.com"

// Executor performs the report call with an already acquired credential.
type Executor interface {
	Execute(ctx context.Context, cred domain.Credential, spec domain.ReportSpec) (*domain.ReportResult, error)
}

type ExecutorConfig struct {
	BaseURL    string
	PropertyID string
	HTTPClient *http.Client
}

type httpExecutor struct {
	baseURL    string
	propertyID string
	http       *http.Client
}

func NewHTTPExecutor(cfg ExecutorConfig) Executor {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = client.NewHTTPClient(Upstream, client.DefaultTimeout)
	}
	return &httpExecutor{
		baseURL:    strings.TrimRight(baseURL, "/"),
		propertyID: cfg.PropertyID,
		http:       httpClient,
	}
}

func (e *httpExecutor) Execute(
	ctx context.Context,
	cred domain.Credential,
	spec domain.ReportSpec,
) (*domain.ReportResult, error) {
	logger := zerolog.Ctx(ctx)

	if e.propertyID == "" {
		return nil, &domain.ConfigurationError{Field: "property_id"}
	}

	body, err := json.Marshal(buildRequest(spec))
	if err != nil {
		return nil, fmt.Errorf("failed to encode report request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/properties/%s:runReport", e.baseURL, url.PathEscape(e.propertyID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	cred.Apply(req)

	resp, err := e.http.Do(req)
	if err != nil {
		logger.Warn().Err(err).Str("report", string(spec.Kind())).Msg("report request failed")
		return nil, &domain.UpstreamReportError{Upstream: Upstream, Err: redact(err)}
	}
	defer client.CloseBody(logger, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.UpstreamReportError{
			Upstream: Upstream,
			Status:   resp.StatusCode,
			Body:     client.ErrorBody(resp.Body),
		}
	}

	var data store.RunReportResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, &domain.UpstreamReportError{
			Upstream: Upstream,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("failed to decode report response: %w", err),
		}
	}

	return BuildResult(spec, data), nil
}

func buildRequest(spec domain.ReportSpec) store.RunReportRequest {
	dimensions := spec.Dimensions()
	metrics := spec.Metrics()
	dateRange := spec.DateRange()

	req := store.RunReportRequest{
		Dimensions: make([]store.NamedField, 0, len(dimensions)),
		Metrics:    make([]store.NamedField, 0, len(metrics)),
		DateRanges: []store.DateRange{{StartDate: dateRange.Start, EndDate: dateRange.End}},
	}
	for _, name := range dimensions {
		req.Dimensions = append(req.Dimensions, store.NamedField{Name: name})
	}
	for _, name := range metrics {
		req.Metrics = append(req.Metrics, store.NamedField{Name: name})
	}
	return req
}

// redact drops the request URL from transport errors; with the API-key
// strategy it carries the key.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
