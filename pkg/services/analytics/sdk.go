package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/models/store"
	"github.com/de-tools/ops-atlas/pkg/services/credentials"
	"github.com/de-tools/ops-atlas/pkg/store/client"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type SDKConfig struct {
	PropertyID      string
	CredentialsJSON []byte
	// HTTPClient carries report calls and TokenHTTPClient the token exchange.
	// Both default to instrumented clients with the default timeout.
	HTTPClient      *http.Client
	TokenHTTPClient *http.Client
	// Options are appended after the transport option, e.g. an endpoint override.
	Options []option.ClientOption
}

type sdkRunner struct {
	cfg SDKConfig
}

// NewSDKRunner delegates acquisition and the report call to the managed
// analytics client, which is built per call from the service-account JSON.
func NewSDKRunner(cfg SDKConfig) Runner {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = client.NewHTTPClient(Upstream, client.DefaultTimeout)
	}
	if cfg.TokenHTTPClient == nil {
		cfg.TokenHTTPClient = client.NewHTTPClient(TokenUpstream, client.DefaultTimeout)
	}
	return &sdkRunner{cfg: cfg}
}

func (r *sdkRunner) RunReport(ctx context.Context, spec domain.ReportSpec) (*domain.ReportResult, error) {
	logger := zerolog.Ctx(ctx)

	if r.cfg.PropertyID == "" {
		return nil, &domain.ConfigurationError{Field: "property_id"}
	}
	if len(r.cfg.CredentialsJSON) == 0 {
		return nil, &domain.ConfigurationError{Field: "service_account_json"}
	}

	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, r.cfg.TokenHTTPClient)
	creds, err := google.CredentialsFromJSON(tokenCtx, r.cfg.CredentialsJSON, credentials.AnalyticsReadScope)
	if err != nil {
		return nil, &domain.UpstreamAuthError{Upstream: TokenUpstream, Err: err}
	}

	// The report client authorizes over the configured transport so the
	// upstream timeout and metrics apply to SDK calls as well.
	authorized := &http.Client{
		Timeout: r.cfg.HTTPClient.Timeout,
		Transport: &oauth2.Transport{
			Source: creds.TokenSource,
			Base:   r.cfg.HTTPClient.Transport,
		},
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(authorized)}, r.cfg.Options...)
	svc, err := analyticsdata.NewService(ctx, opts...)
	if err != nil {
		return nil, &domain.UpstreamAuthError{Upstream: Upstream, Err: err}
	}

	req := buildRequest(spec)
	sdkReq := &analyticsdata.RunReportRequest{}
	for _, d := range req.Dimensions {
		sdkReq.Dimensions = append(sdkReq.Dimensions, &analyticsdata.Dimension{Name: d.Name})
	}
	for _, m := range req.Metrics {
		sdkReq.Metrics = append(sdkReq.Metrics, &analyticsdata.Metric{Name: m.Name})
	}
	for _, dr := range req.DateRanges {
		sdkReq.DateRanges = append(sdkReq.DateRanges, &analyticsdata.DateRange{
			StartDate: dr.StartDate,
			EndDate:   dr.EndDate,
		})
	}

	resp, err := svc.Properties.RunReport("properties/"+r.cfg.PropertyID, sdkReq).Context(ctx).Do()
	if err != nil {
		logger.Warn().Err(err).Str("report", string(spec.Kind())).Msg("sdk report request failed")
		return nil, sdkError(err)
	}

	return BuildResult(spec, fromSDK(resp)), nil
}

func sdkError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		body := map[string]any{}
		if apiErr.Body != "" {
			if jsonErr := json.Unmarshal([]byte(apiErr.Body), &body); jsonErr != nil || body == nil {
				body = map[string]any{}
			}
		}
		return &domain.UpstreamReportError{Upstream: Upstream, Status: apiErr.Code, Body: body, Err: err}
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		return &domain.UpstreamAuthError{Upstream: TokenUpstream, Status: status, Body: string(retrieveErr.Body), Err: err}
	}

	return &domain.UpstreamReportError{Upstream: Upstream, Err: fmt.Errorf("sdk report: %w", err)}
}

// fromSDK maps the SDK response onto the wire model. The SDK drops a zero
// rowCount, so zero with rows present is treated as absent.
func fromSDK(resp *analyticsdata.RunReportResponse) store.RunReportResponse {
	out := store.RunReportResponse{Rows: make([]store.Row, 0, len(resp.Rows))}
	for _, row := range resp.Rows {
		if row == nil {
			out.Rows = append(out.Rows, store.Row{})
			continue
		}
		var r store.Row
		for _, dv := range row.DimensionValues {
			r.DimensionValues = append(r.DimensionValues, sdkValue(dv))
		}
		for _, mv := range row.MetricValues {
			r.MetricValues = append(r.MetricValues, sdkMetricValue(mv))
		}
		out.Rows = append(out.Rows, r)
	}

	if resp.RowCount != 0 || len(resp.Rows) == 0 {
		count := int(resp.RowCount)
		out.RowCount = &count
	}
	return out
}

func sdkValue(v *analyticsdata.DimensionValue) *store.FieldValue {
	if v == nil {
		return nil
	}
	value := v.Value
	return &store.FieldValue{Value: &value}
}

func sdkMetricValue(v *analyticsdata.MetricValue) *store.FieldValue {
	if v == nil {
		return nil
	}
	value := v.Value
	return &store.FieldValue{Value: &value}
}
