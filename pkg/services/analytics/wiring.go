package analytics

import (
	"context"
	"net/http"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/services/config"
	"github.com/de-tools/ops-atlas/pkg/services/credentials"
	"github.com/de-tools/ops-atlas/pkg/store/client"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// TokenUpstream labels calls to the analytics identity provider.
const TokenUpstream = "google-oauth"

// FromConfig selects the credential strategy once, in precedence order:
// service account with the SDK, service account, refresh token, API key.
// A selected strategy that is missing companion values fails here. With no
// strategy configured every report fails with a configuration error.
// A nil httpClient selects an instrumented default.
func FromConfig(ctx context.Context, cfg config.Analytics, httpClient *http.Client) (Runner, credentials.Strategy, error) {
	logger := zerolog.Ctx(ctx)

	reportClient := client.Instrument(httpClient, Upstream)
	tokenClient := client.Instrument(httpClient, TokenUpstream)

	strategy := selectStrategy(cfg)
	if strategy == credentials.StrategyNone {
		logger.Warn().Msg("no analytics credentials configured, reports will fail")
		return NewUnconfiguredRunner(&domain.ConfigurationError{Field: "analytics credentials"}), strategy, nil
	}
	if cfg.PropertyID == "" {
		return nil, strategy, &domain.ConfigurationError{Field: "property_id"}
	}

	if strategy == credentials.StrategySDK {
		if _, err := credentials.ParseServiceAccount([]byte(cfg.ServiceAccountJSON)); err != nil {
			return nil, strategy, err
		}
		var opts []option.ClientOption
		if cfg.BaseURL != "" && cfg.BaseURL != DefaultBaseURL {
			opts = append(opts, option.WithEndpoint(cfg.BaseURL))
		}
		logger.Info().Str("strategy", string(strategy)).Msg("analytics runner configured")
		return NewSDKRunner(SDKConfig{
			PropertyID:      cfg.PropertyID,
			CredentialsJSON: []byte(cfg.ServiceAccountJSON),
			HTTPClient:      reportClient,
			TokenHTTPClient: tokenClient,
			Options:         opts,
		}), strategy, nil
	}

	provider, err := newProvider(strategy, cfg, tokenClient)
	if err != nil {
		return nil, strategy, err
	}
	if cfg.CacheTokens && strategy != credentials.StrategyAPIKey {
		provider = credentials.NewCachingProvider(provider, nil, credentials.DefaultExpirySkew)
	}

	executor := NewHTTPExecutor(ExecutorConfig{
		BaseURL:    cfg.BaseURL,
		PropertyID: cfg.PropertyID,
		HTTPClient: reportClient,
	})

	logger.Info().
		Str("strategy", string(strategy)).
		Bool("cache_tokens", cfg.CacheTokens).
		Msg("analytics runner configured")
	return NewPipeline(provider, executor), strategy, nil
}

func selectStrategy(cfg config.Analytics) credentials.Strategy {
	switch {
	case cfg.ServiceAccountJSON != "" && cfg.UseSDK:
		return credentials.StrategySDK
	case cfg.ServiceAccountJSON != "":
		return credentials.StrategyJWTBearer
	case cfg.RefreshToken != "":
		return credentials.StrategyRefreshToken
	case cfg.APIKey != "":
		return credentials.StrategyAPIKey
	default:
		return credentials.StrategyNone
	}
}

func newProvider(strategy credentials.Strategy, cfg config.Analytics, httpClient *http.Client) (credentials.Provider, error) {
	switch strategy {
	case credentials.StrategyJWTBearer:
		sa, err := credentials.ParseServiceAccount([]byte(cfg.ServiceAccountJSON))
		if err != nil {
			return nil, err
		}
		return credentials.Instrument(strategy, credentials.NewJWTBearerProvider(credentials.JWTBearerConfig{
			Upstream:   TokenUpstream,
			Email:      sa.Email,
			PrivateKey: sa.PrivateKey,
			TokenURL:   sa.TokenURI,
			HTTPClient: httpClient,
		})), nil
	case credentials.StrategyRefreshToken:
		switch {
		case cfg.ClientID == "":
			return nil, &domain.ConfigurationError{Field: "client_id"}
		case cfg.ClientSecret == "":
			return nil, &domain.ConfigurationError{Field: "client_secret"}
		}
		return credentials.Instrument(strategy, credentials.NewRefreshTokenProvider(credentials.RefreshTokenConfig{
			Upstream:     TokenUpstream,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RefreshToken: cfg.RefreshToken,
			TokenURL:     cfg.TokenURL,
			HTTPClient:   httpClient,
		})), nil
	default:
		return credentials.Instrument(strategy, credentials.NewAPIKeyProvider(cfg.APIKey)), nil
	}
}
