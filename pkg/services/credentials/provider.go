package credentials

import (
	"context"

	"github.com/de-tools/ops-atlas/pkg/metrics"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
)

type Strategy string

const (
	StrategyNone         Strategy = "none"
	StrategyAPIKey       Strategy = "api_key"
	StrategyRefreshToken Strategy = "refresh_token"
	StrategyJWTBearer    Strategy = "jwt_bearer"
	StrategySDK          Strategy = "sdk"
)

// Provider produces a credential for one upstream call.
type Provider interface {
	Acquire(ctx context.Context) (domain.Credential, error)
}

type apiKeyProvider struct {
	key string
}

// NewAPIKeyProvider returns a provider whose credential is the static key,
// sent as a query parameter.
func NewAPIKeyProvider(key string) Provider {
	return &apiKeyProvider{key: key}
}

func (p *apiKeyProvider) Acquire(_ context.Context) (domain.Credential, error) {
	if p.key == "" {
		return domain.Credential{}, &domain.ConfigurationError{Field: "api_key"}
	}
	return domain.Credential{Token: p.key, Scheme: domain.SchemeAPIKey}, nil
}

type instrumentedProvider struct {
	strategy Strategy
	next     Provider
}

// Instrument counts acquisitions of next under strategy.
func Instrument(strategy Strategy, next Provider) Provider {
	return &instrumentedProvider{strategy: strategy, next: next}
}

func (p *instrumentedProvider) Acquire(ctx context.Context) (domain.Credential, error) {
	cred, err := p.next.Acquire(ctx)
	metrics.CredentialAcquisitions.WithLabelValues(string(p.strategy), metrics.Outcome(err)).Inc()
	return cred, err
}
