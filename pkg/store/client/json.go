package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// GetJSON sends req and decodes a 2xx body into out. Every failure comes back
// as *domain.UpstreamReportError.
func GetJSON(ctx context.Context, c *http.Client, upstream string, req *http.Request, out any) error {
	logger := zerolog.Ctx(ctx)

	req.Header.Set("Accept", "application/json")
	resp, err := c.Do(req.WithContext(ctx))
	if err != nil {
		logger.Warn().Err(err).Str("upstream", upstream).Str("path", req.URL.Path).Msg("upstream request failed")
		return &domain.UpstreamReportError{Upstream: upstream, Err: err}
	}
	defer CloseBody(logger, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn().
			Str("upstream", upstream).
			Str("path", req.URL.Path).
			Int("status", resp.StatusCode).
			Msg("upstream request rejected")
		return &domain.UpstreamReportError{
			Upstream: upstream,
			Status:   resp.StatusCode,
			Body:     ErrorBody(resp.Body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.UpstreamReportError{
			Upstream: upstream,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("failed to decode %s response: %w", req.URL.Path, err),
		}
	}
	return nil
}
