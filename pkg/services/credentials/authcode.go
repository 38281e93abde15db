package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/models/store"
	"github.com/de-tools/ops-atlas/pkg/store/client"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	XeroAuthURL        = "https://login.xero.com/identity/connect/authorize"
	XeroConnectionsURL = "https://api.xero.com/connections"
)

var XeroScopes = []string{
	"accounting.transactions.read",
	"accounting.reports.read",
	"accounting.settings.read",
	"offline_access",
}

type AuthCodeConfig struct {
	Upstream       string
	ClientID       string
	ClientSecret   string
	RedirectURI    string
	AuthURL        string
	TokenURL       string
	ConnectionsURL string
	Scopes         []string
	HTTPClient     *http.Client
}

type SetupResult struct {
	RefreshToken string
	TenantID     string
}

// AuthCodeFlow mints the long-lived refresh token consumed by the
// refresh-token strategy. It is run once by an operator.
type AuthCodeFlow struct {
	cfg AuthCodeConfig
}

func NewAuthCodeFlow(cfg AuthCodeConfig) *AuthCodeFlow {
	if cfg.AuthURL == "" {
		cfg.AuthURL = XeroAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = XeroTokenURL
	}
	if cfg.ConnectionsURL == "" {
		cfg.ConnectionsURL = XeroConnectionsURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = XeroScopes
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = client.NewHTTPClient(cfg.Upstream, client.DefaultTimeout)
	}
	return &AuthCodeFlow{cfg: cfg}
}

func (f *AuthCodeFlow) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     f.cfg.ClientID,
		ClientSecret: f.cfg.ClientSecret,
		RedirectURL:  f.cfg.RedirectURI,
		Scopes:       f.cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   f.cfg.AuthURL,
			TokenURL:  f.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// AuthorizeURL builds the consent URL an operator opens in a browser.
func (f *AuthCodeFlow) AuthorizeURL() (string, error) {
	if f.cfg.ClientID == "" {
		return "", &domain.ConfigurationError{Field: "client_id"}
	}
	return f.oauthConfig().AuthCodeURL(""), nil
}

// Exchange trades an authorization code for a refresh token and resolves the
// tenant bound to the authorization.
func (f *AuthCodeFlow) Exchange(ctx context.Context, code string) (*SetupResult, error) {
	if f.cfg.ClientID == "" {
		return nil, &domain.ConfigurationError{Field: "client_id"}
	}
	if f.cfg.ClientSecret == "" {
		return nil, &domain.ConfigurationError{Field: "client_secret"}
	}

	token, err := f.oauthConfig().Exchange(oauthContext(ctx, f.cfg.HTTPClient), code)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("upstream", f.cfg.Upstream).Msg("authorization code exchange failed")
		return nil, authError(f.cfg.Upstream, err)
	}

	connections, err := f.connections(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}
	if len(connections) == 0 {
		return nil, &domain.NoTenantError{Upstream: f.cfg.Upstream}
	}

	return &SetupResult{
		RefreshToken: token.RefreshToken,
		TenantID:     connections[0].TenantID,
	}, nil
}

func (f *AuthCodeFlow) connections(ctx context.Context, accessToken string) ([]store.Connection, error) {
	logger := zerolog.Ctx(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.ConnectionsURL, nil)
	if err != nil {
		return nil, err
	}
	domain.Credential{Token: accessToken, Scheme: domain.SchemeBearer}.Apply(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamAuthError{Upstream: f.cfg.Upstream, Err: err}
	}
	defer client.CloseBody(logger, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &domain.UpstreamAuthError{
			Upstream: f.cfg.Upstream,
			Status:   resp.StatusCode,
			Body:     strings.TrimSpace(string(body)),
		}
	}

	var connections []store.Connection
	if err := json.NewDecoder(resp.Body).Decode(&connections); err != nil {
		return nil, fmt.Errorf("failed to decode connections response: %w", err)
	}
	return connections, nil
}
