package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/de-tools/ops-atlas/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		lines = append(lines, entry)
	}
	return lines
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(Logger(&logger))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("handled")
	})
	router.Get("/xero", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "req-42")
	router.ServeHTTP(httptest.NewRecorder(), req)

	lines := logLines(t, &buf)
	require.Len(t, lines, 2)

	handled, completed := lines[0], lines[1]
	assert.Equal(t, "GET", handled["method"])
	assert.Equal(t, "/healthz", handled["path"])
	assert.Equal(t, "req-42", handled["request_id"])
	assert.Equal(t, "handled", handled["message"])

	assert.Equal(t, "request completed", completed["message"])
	assert.Equal(t, "req-42", completed["request_id"])
	assert.Equal(t, float64(http.StatusOK), completed["status"])
	assert.Equal(t, "info", completed["level"])
	assert.Contains(t, completed, "duration")

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/xero", nil))

	lines = logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, float64(http.StatusInternalServerError), lines[0]["status"])
	assert.Equal(t, "warn", lines[0]["level"])
	assert.NotEmpty(t, lines[0]["request_id"])
}

func TestMetrics(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Metrics)
	router.Get("/shopify", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	router.Get("/xero", func(w http.ResponseWriter, r *http.Request) {})

	before := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/shopify", "400"))
	beforeOK := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/xero", "200"))
	beforeUnmatched := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("unmatched", "404"))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/shopify", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/xero", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/shopify", "400")))
	assert.Equal(t, beforeOK+1, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/xero", "200")))
	assert.Equal(t, beforeUnmatched+1, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("unmatched", "404")))
}
