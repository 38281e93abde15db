package accounting

import (
	"net/http"

	"github.com/de-tools/ops-atlas/pkg/services/config"
	"github.com/de-tools/ops-atlas/pkg/services/credentials"
	"github.com/de-tools/ops-atlas/pkg/store/client"
	"golang.org/x/oauth2"
)

// FromConfig builds the accounting client. Missing credentials surface on
// first use, not here, so the rest of the service can start without them.
func FromConfig(cfg config.Accounting, httpClient *http.Client) Client {
	provider := credentials.Instrument(credentials.StrategyRefreshToken, credentials.NewRefreshTokenProvider(
		credentials.RefreshTokenConfig{
			Upstream:     IdentityUpstream,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RefreshToken: cfg.RefreshToken,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
			TenantID:     cfg.TenantID,
			HTTPClient:   client.Instrument(httpClient, IdentityUpstream),
		},
	))

	return NewClient(Config{
		BaseURL:    cfg.BaseURL,
		TenantID:   cfg.TenantID,
		Provider:   provider,
		HTTPClient: client.Instrument(httpClient, Upstream),
	})
}

// SetupFromConfig builds the one-shot authorization-code flow.
func SetupFromConfig(cfg config.Accounting, httpClient *http.Client) *credentials.AuthCodeFlow {
	return credentials.NewAuthCodeFlow(credentials.AuthCodeConfig{
		Upstream:       IdentityUpstream,
		ClientID:       cfg.ClientID,
		ClientSecret:   cfg.ClientSecret,
		RedirectURI:    cfg.RedirectURI,
		AuthURL:        cfg.AuthURL,
		TokenURL:       cfg.TokenURL,
		ConnectionsURL: cfg.ConnectionsURL,
		HTTPClient:     client.Instrument(httpClient, IdentityUpstream),
	})
}
