package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/models/store"
	"github.com/rs/zerolog"
)

// TokenClient posts form-encoded grants to an OAuth2 token endpoint. The
// grant itself authenticates the caller, so no client credentials are sent.
type TokenClient struct {
	upstream string
	tokenURL string
	http     *http.Client
}

type TokenClientConfig struct {
	Upstream   string
	TokenURL   string
	HTTPClient *http.Client
}

func NewTokenClient(cfg TokenClientConfig) *TokenClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient(cfg.Upstream, DefaultTimeout)
	}
	return &TokenClient{
		upstream: cfg.Upstream,
		tokenURL: cfg.TokenURL,
		http:     httpClient,
	}
}

// Exchange sends the grant and returns the issued token. Non-2xx responses come
// back as *domain.UpstreamAuthError carrying the status and raw body.
func (tc *TokenClient) Exchange(ctx context.Context, form url.Values) (*store.AccessToken, error) {
	logger := zerolog.Ctx(ctx)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		tc.tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to create token http request")
		return nil, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := tc.http.Do(req)
	if err != nil {
		logger.Warn().Err(err).Str("upstream", tc.upstream).Msg("failed to get token")
		return nil, &domain.UpstreamAuthError{Upstream: tc.upstream, Err: err}
	}
	defer CloseBody(logger, resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read token response")
		return nil, &domain.UpstreamAuthError{Upstream: tc.upstream, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.UpstreamAuthError{
			Upstream: tc.upstream,
			Status:   resp.StatusCode,
			Body:     string(body),
		}
	}

	var token store.AccessToken
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token response: %w", err)
	}
	if token.Token == "" {
		return nil, &domain.UpstreamAuthError{
			Upstream: tc.upstream,
			Status:   resp.StatusCode,
			Body:     "response did not contain access_token",
		}
	}

	return &token, nil
}

// Expiry converts expires_in into an absolute time. Zero means unknown.
func Expiry(token *store.AccessToken, now time.Time) time.Time {
	if token == nil || token.ExpiresIn <= 0 {
		return time.Time{}
	}
	return now.Add(time.Duration(token.ExpiresIn) * time.Second)
}
