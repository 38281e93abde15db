package credentials

import (
	"context"
	"errors"
	"net/http"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	GoogleTokenURL = "https://oauth2.googleapis.com/token"
	XeroTokenURL   = "https://identity.xero.com/connect/token"
)

type RefreshTokenConfig struct {
	Upstream     string
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURL     string
	// AuthStyle selects body or Basic-header client authentication.
	AuthStyle oauth2.AuthStyle
	// TenantID is attached to every issued credential when set.
	TenantID   string
	HTTPClient *http.Client
}

type refreshTokenProvider struct {
	cfg RefreshTokenConfig
}

// NewRefreshTokenProvider exchanges a long-lived refresh token for an access
// token on every Acquire.
func NewRefreshTokenProvider(cfg RefreshTokenConfig) Provider {
	if cfg.AuthStyle == oauth2.AuthStyleAutoDetect {
		cfg.AuthStyle = oauth2.AuthStyleInParams
	}
	return &refreshTokenProvider{cfg: cfg}
}

func (p *refreshTokenProvider) Acquire(ctx context.Context) (domain.Credential, error) {
	if err := p.validate(); err != nil {
		return domain.Credential{}, err
	}

	conf := &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  p.cfg.TokenURL,
			AuthStyle: p.cfg.AuthStyle,
		},
	}

	token, err := conf.TokenSource(oauthContext(ctx, p.cfg.HTTPClient), &oauth2.Token{
		RefreshToken: p.cfg.RefreshToken,
	}).Token()
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("upstream", p.cfg.Upstream).Msg("refresh token exchange failed")
		return domain.Credential{}, authError(p.cfg.Upstream, err)
	}

	return domain.Credential{
		Token:     token.AccessToken,
		Scheme:    domain.SchemeBearer,
		TenantID:  p.cfg.TenantID,
		ExpiresAt: token.Expiry,
	}, nil
}

func (p *refreshTokenProvider) validate() error {
	switch {
	case p.cfg.ClientID == "":
		return &domain.ConfigurationError{Field: "client_id"}
	case p.cfg.ClientSecret == "":
		return &domain.ConfigurationError{Field: "client_secret"}
	case p.cfg.RefreshToken == "":
		return &domain.ConfigurationError{Field: "refresh_token"}
	case p.cfg.TokenURL == "":
		return &domain.ConfigurationError{Field: "token_url"}
	}
	return nil
}

func oauthContext(ctx context.Context, c *http.Client) context.Context {
	if c == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c)
}

// authError maps an x/oauth2 failure onto the domain taxonomy.
func authError(upstream string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		return &domain.UpstreamAuthError{
			Upstream: upstream,
			Status:   status,
			Body:     string(retrieveErr.Body),
			Err:      err,
		}
	}
	return &domain.UpstreamAuthError{Upstream: upstream, Err: err}
}
