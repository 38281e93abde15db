package credentials

import (
	"context"
	"crypto/rsa"
	"net/http"
	"net/url"
	"time"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/store/client"
	"github.com/golang-jwt/jwt/v5"
)

const (
	JWTBearerGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	AnalyticsReadScope = "https://www.googleapis.com/auth/analytics.readonly"

	assertionLifetime = time.Hour
)

type JWTBearerConfig struct {
	Upstream   string
	Email      string
	PrivateKey *rsa.PrivateKey
	TokenURL   string
	Scope      string
	Now        func() time.Time
	HTTPClient *http.Client
}

// assertionClaims carries aud as a plain string, not a one-element array.
type assertionClaims struct {
	Scope    string `json:"scope"`
	Audience string `json:"aud"`
	jwt.RegisteredClaims
}

type jwtBearerProvider struct {
	cfg    JWTBearerConfig
	tokens *client.TokenClient
}

// NewJWTBearerProvider signs a fresh service-account assertion and exchanges
// it on every Acquire.
func NewJWTBearerProvider(cfg JWTBearerConfig) Provider {
	if cfg.Scope == "" {
		cfg.Scope = AnalyticsReadScope
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = GoogleTokenURL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &jwtBearerProvider{
		cfg: cfg,
		tokens: client.NewTokenClient(client.TokenClientConfig{
			Upstream:   cfg.Upstream,
			TokenURL:   cfg.TokenURL,
			HTTPClient: cfg.HTTPClient,
		}),
	}
}

// BuildAssertion returns the signed RS256 assertion for issue time now.
func BuildAssertion(cfg JWTBearerConfig, now time.Time) (string, error) {
	switch {
	case cfg.Email == "":
		return "", &domain.ConfigurationError{Field: "client_email"}
	case cfg.PrivateKey == nil:
		return "", &domain.ConfigurationError{Field: "private_key"}
	}

	claims := assertionClaims{
		Scope:    cfg.Scope,
		Audience: cfg.TokenURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(assertionLifetime)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(cfg.PrivateKey)
}

func (p *jwtBearerProvider) Acquire(ctx context.Context) (domain.Credential, error) {
	now := p.cfg.Now()
	assertion, err := BuildAssertion(p.cfg, now)
	if err != nil {
		return domain.Credential{}, err
	}

	token, err := p.tokens.Exchange(ctx, url.Values{
		"grant_type": {JWTBearerGrantType},
		"assertion":  {assertion},
	})
	if err != nil {
		return domain.Credential{}, err
	}

	return domain.Credential{
		Token:     token.Token,
		Scheme:    domain.SchemeBearer,
		ExpiresAt: client.Expiry(token, now),
	}, nil
}
