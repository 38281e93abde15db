package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/models/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestHTTPExecutor_Execute(t *testing.T) {
	var got store.RunReportRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/properties/123:runReport", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"rows": [
				{"dimensionValues": [{"value": "20240101"}], "metricValues": [{"value": "10"}, {"value": "8"}]},
				{"dimensionValues": [{"value": "20240102"}], "metricValues": [{"value": "15"}]}
			]
		}`))
	}))
	defer server.Close()

	spec, err := domain.LookupReport("overview", "2024-01-01", "2024-01-02")
	require.NoError(t, err)

	executor := NewHTTPExecutor(ExecutorConfig{BaseURL: server.URL, PropertyID: "123", HTTPClient: server.Client()})
	result, err := executor.Execute(testContext(t), domain.Credential{Token: "tok", Scheme: domain.SchemeBearer}, spec)
	require.NoError(t, err)

	assert.Equal(t, store.RunReportRequest{
		Dimensions: []store.NamedField{{Name: "date"}},
		Metrics: []store.NamedField{
			{Name: "sessions"}, {Name: "activeUsers"}, {Name: "newUsers"},
			{Name: "bounceRate"}, {Name: "averageSessionDuration"},
		},
		DateRanges: []store.DateRange{{StartDate: "2024-01-01", EndDate: "2024-01-02"}},
	}, got)

	assert.Equal(t, 2, result.RowCount)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "8", result.Rows[0]["activeUsers"])
	assert.Equal(t, "", result.Rows[1]["activeUsers"])
	assert.Equal(t, 25, domain.TotalSessions(result.Rows))
}

func TestHTTPExecutor_APIKeyInQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.URL.Query().Get("key"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	spec, err := domain.LookupReport("conversions", "", "")
	require.NoError(t, err)

	executor := NewHTTPExecutor(ExecutorConfig{BaseURL: server.URL, PropertyID: "123", HTTPClient: server.Client()})
	result, err := executor.Execute(testContext(t), domain.Credential{Token: "secret-key", Scheme: domain.SchemeAPIKey}, spec)
	require.NoError(t, err)
	assert.Equal(t, 0, result.RowCount)
	assert.Empty(t, result.Rows)
}

func TestHTTPExecutor_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantBody map[string]any
	}{
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"code":429,"message":"rate limited"}}`,
			wantBody: map[string]any{
				"error": map[string]any{"code": float64(429), "message": "rate limited"},
			},
		},
		{
			name:     "unparsable body",
			status:   http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			wantBody: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			spec, err := domain.LookupReport("overview", "", "")
			require.NoError(t, err)

			executor := NewHTTPExecutor(ExecutorConfig{BaseURL: server.URL, PropertyID: "123", HTTPClient: server.Client()})
			_, err = executor.Execute(testContext(t), domain.Credential{Token: "tok", Scheme: domain.SchemeBearer}, spec)

			var reportErr *domain.UpstreamReportError
			require.True(t, errors.As(err, &reportErr))
			assert.Equal(t, tt.status, reportErr.Status)
			assert.Equal(t, tt.wantBody, reportErr.Body)
			assert.Equal(t, domain.StageReport, domain.Stage(err))
		})
	}
}

func TestHTTPExecutor_MissingPropertyID(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	spec, err := domain.LookupReport("overview", "", "")
	require.NoError(t, err)

	executor := NewHTTPExecutor(ExecutorConfig{BaseURL: server.URL, HTTPClient: server.Client()})
	_, err = executor.Execute(testContext(t), domain.Credential{Token: "tok"}, spec)

	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "property_id", cfgErr.Field)
	assert.Zero(t, calls.Load())
}

func TestHTTPExecutor_TransportErrorHidesKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	spec, err := domain.LookupReport("overview", "", "")
	require.NoError(t, err)

	executor := NewHTTPExecutor(ExecutorConfig{BaseURL: url, PropertyID: "123"})
	_, err = executor.Execute(testContext(t), domain.Credential{Token: "super-secret", Scheme: domain.SchemeAPIKey}, spec)

	var reportErr *domain.UpstreamReportError
	require.True(t, errors.As(err, &reportErr))
	assert.Zero(t, reportErr.Status)
	assert.NotContains(t, err.Error(), "super-secret")
}
