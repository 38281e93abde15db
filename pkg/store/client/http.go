package client

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/de-tools/ops-atlas/pkg/metrics"
	"github.com/rs/zerolog"
)

const DefaultTimeout = 15 * time.Second

type instrumentedTransport struct {
	upstream string
	next     http.RoundTripper
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	metrics.UpstreamDuration.WithLabelValues(t.upstream).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.UpstreamRequests.WithLabelValues(t.upstream, metrics.OutcomeError).Inc()
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		metrics.UpstreamRequests.WithLabelValues(t.upstream, metrics.OutcomeFailure).Inc()
	default:
		metrics.UpstreamRequests.WithLabelValues(t.upstream, metrics.OutcomeSuccess).Inc()
	}
	return resp, err
}

// NewHTTPClient returns a client whose requests are counted under upstream.
// A zero timeout selects DefaultTimeout.
func NewHTTPClient(upstream string, timeout time.Duration) *http.Client {
	return Instrument(&http.Client{Timeout: timeout}, upstream)
}

// Instrument returns a copy of c whose transport records upstream metrics.
func Instrument(c *http.Client, upstream string) *http.Client {
	if c == nil {
		c = &http.Client{}
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	next := c.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	return &http.Client{
		Timeout:       timeout,
		CheckRedirect: c.CheckRedirect,
		Jar:           c.Jar,
		Transport:     &instrumentedTransport{upstream: upstream, next: next},
	}
}

// CloseBody closes resp.Body, logging a failure against the request logger.
func CloseBody(logger *zerolog.Logger, body io.ReadCloser) {
	if err := body.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close response body")
	}
}

// ErrorBody parses an upstream error payload. Unparsable bodies come back as
// an empty object.
func ErrorBody(body io.Reader) map[string]any {
	parsed := map[string]any{}
	data, err := io.ReadAll(body)
	if err != nil {
		return parsed
	}
	if err := json.Unmarshal(data, &parsed); err != nil || parsed == nil {
		return map[string]any{}
	}
	return parsed
}
