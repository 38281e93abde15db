package analytics

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/de-tools/ops-atlas/pkg/metrics"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/store/client"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type sdkUpstream struct {
	server      *httptest.Server
	tokenStatus int
	tokenCalls  atomic.Int32
	authHeader  atomic.Value
}

// newSDKUpstream serves the token endpoint at /token and hands every other
// path to report.
func newSDKUpstream(t *testing.T, report http.HandlerFunc) *sdkUpstream {
	t.Helper()
	up := &sdkUpstream{tokenStatus: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		up.tokenCalls.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "urn:ietf:params:oauth:grant-type:jwt-bearer", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(up.tokenStatus)
		if up.tokenStatus != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"sdk-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		up.authHeader.Store(r.Header.Get("Authorization"))
		report(w, r)
	})

	up.server = httptest.NewServer(mux)
	t.Cleanup(up.server.Close)
	return up
}

func (up *sdkUpstream) runner(t *testing.T) Runner {
	t.Helper()
	return NewSDKRunner(SDKConfig{
		PropertyID:      "123",
		CredentialsJSON: []byte(serviceAccountJSON(t, up.server.URL+"/token")),
		HTTPClient:      client.Instrument(up.server.Client(), Upstream),
		TokenHTTPClient: client.Instrument(up.server.Client(), TokenUpstream),
		Options:         []option.ClientOption{option.WithEndpoint(up.server.URL + "/")},
	})
}

func newSDKRunner(t *testing.T, handler http.HandlerFunc) Runner {
	t.Helper()
	return newSDKUpstream(t, handler).runner(t)
}

func TestSDKRunner_RunReport(t *testing.T) {
	var body map[string]any
	runner := newSDKRunner(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/properties/123:runReport", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"rows": [
				{"dimensionValues": [{"value": "google"}, {"value": "cpc"}], "metricValues": [{"value": "3"}]}
			],
			"rowCount": 9
		}`))
	})

	spec, err := domain.LookupReport("traffic-sources", "", "")
	require.NoError(t, err)

	result, err := runner.RunReport(testContext(t), spec)
	require.NoError(t, err)

	assert.Equal(t, 9, result.RowCount)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, domain.ReportRow{
		"sessionDefaultChannelGroup": "google",
		"sessionSource":              "cpc",
		"sessionMedium":              "",
		"sessions":                   "3",
		"activeUsers":                "",
		"conversions":                "",
	}, result.Rows[0])

	dateRanges, ok := body["dateRanges"].([]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"startDate": "7daysAgo", "endDate": "today"}, dateRanges[0])
}

func TestSDKRunner_AbsentRowCountFallsBack(t *testing.T) {
	runner := newSDKRunner(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rows": [{"dimensionValues": [{"value": "20240101"}]}, {}]}`))
	})

	spec, err := domain.LookupReport("overview", "", "")
	require.NoError(t, err)

	result, err := runner.RunReport(testContext(t), spec)
	require.NoError(t, err)
	assert.Equal(t, 2, result.RowCount)
}

func TestSDKRunner_Rejected(t *testing.T) {
	runner := newSDKRunner(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"rate limited"}}`))
	})

	spec, err := domain.LookupReport("overview", "", "")
	require.NoError(t, err)

	_, err = runner.RunReport(testContext(t), spec)

	var reportErr *domain.UpstreamReportError
	require.True(t, errors.As(err, &reportErr))
	assert.Equal(t, http.StatusTooManyRequests, reportErr.Status)
	assert.Contains(t, reportErr.Body, "error")
	assert.Equal(t, domain.StageReport, domain.Stage(err))
}

func TestSDKRunner_MissingConfiguration(t *testing.T) {
	spec, err := domain.LookupReport("overview", "", "")
	require.NoError(t, err)

	_, err = NewSDKRunner(SDKConfig{CredentialsJSON: []byte("{}")}).RunReport(testContext(t), spec)
	assert.Equal(t, domain.StageConfig, domain.Stage(err))

	_, err = NewSDKRunner(SDKConfig{PropertyID: "123"}).RunReport(testContext(t), spec)
	assert.Equal(t, domain.StageConfig, domain.Stage(err))
}

func TestSDKRunner_UsesConfiguredTransport(t *testing.T) {
	up := newSDKUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rows": [], "rowCount": 0}`))
	})

	reportsBefore := testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues(Upstream, metrics.OutcomeSuccess))
	tokensBefore := testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues(TokenUpstream, metrics.OutcomeSuccess))

	spec, err := domain.LookupReport("overview", "", "")
	require.NoError(t, err)

	_, err = up.runner(t).RunReport(testContext(t), spec)
	require.NoError(t, err)

	assert.Equal(t, "Bearer sdk-token", up.authHeader.Load())
	assert.Equal(t, int32(1), up.tokenCalls.Load())
	assert.Equal(t, reportsBefore+1, testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues(Upstream, metrics.OutcomeSuccess)))
	assert.Equal(t, tokensBefore+1, testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues(TokenUpstream, metrics.OutcomeSuccess)))
}

func TestSDKRunner_TokenRejected(t *testing.T) {
	var reportCalled atomic.Bool
	up := newSDKUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		reportCalled.Store(true)
	})
	up.tokenStatus = http.StatusBadRequest

	spec, err := domain.LookupReport("overview", "", "")
	require.NoError(t, err)

	_, err = up.runner(t).RunReport(testContext(t), spec)

	var authErr *domain.UpstreamAuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusBadRequest, authErr.Status)
	assert.Equal(t, domain.StageCredential, domain.Stage(err))
	assert.False(t, reportCalled.Load())
}

func TestSDKRunner_HonoursClientTimeout(t *testing.T) {
	release := make(chan struct{})
	up := newSDKUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	t.Cleanup(func() { close(release) })

	reportClient := client.Instrument(up.server.Client(), Upstream)
	reportClient.Timeout = 50 * time.Millisecond
	runner := NewSDKRunner(SDKConfig{
		PropertyID:      "123",
		CredentialsJSON: []byte(serviceAccountJSON(t, up.server.URL+"/token")),
		HTTPClient:      reportClient,
		TokenHTTPClient: client.Instrument(up.server.Client(), TokenUpstream),
		Options:         []option.ClientOption{option.WithEndpoint(up.server.URL + "/")},
	})

	spec, err := domain.LookupReport("overview", "", "")
	require.NoError(t, err)

	_, err = runner.RunReport(testContext(t), spec)

	require.Error(t, err)
	assert.Equal(t, domain.StageReport, domain.Stage(err))
}
