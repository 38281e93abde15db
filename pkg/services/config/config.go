package config

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     Server     `mapstructure:"server"`
	Upstream   Upstream   `mapstructure:"upstream"`
	Analytics  Analytics  `mapstructure:"analytics"`
	Commerce   Commerce   `mapstructure:"commerce"`
	Accounting Accounting `mapstructure:"accounting"`
	Secrets    Secrets    `mapstructure:"secrets"`
}

type Server struct {
	Host               string        `mapstructure:"host" validate:"required"`
	Port               string        `mapstructure:"port" validate:"required,numeric"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
}

type Upstream struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`
}

// Analytics selects its credential strategy by which of the fields are set.
type Analytics struct {
	PropertyID         string `mapstructure:"property_id"`
	APIKey             string `mapstructure:"api_key"`
	ClientID           string `mapstructure:"client_id"`
	ClientSecret       string `mapstructure:"client_secret"`
	RefreshToken       string `mapstructure:"refresh_token"`
	ServiceAccountJSON string `mapstructure:"service_account_json"`
	UseSDK             bool   `mapstructure:"use_sdk"`
	CacheTokens        bool   `mapstructure:"cache_tokens"`
	BaseURL            string `mapstructure:"base_url" validate:"required,url"`
	TokenURL           string `mapstructure:"token_url" validate:"required,url"`
}

type Commerce struct {
	StoreDomain string `mapstructure:"store_domain"`
	AdminToken  string `mapstructure:"admin_token"`
	APIVersion  string `mapstructure:"api_version" validate:"required"`
}

type Accounting struct {
	ClientID       string `mapstructure:"client_id"`
	ClientSecret   string `mapstructure:"client_secret"`
	RefreshToken   string `mapstructure:"refresh_token"`
	TenantID       string `mapstructure:"tenant_id"`
	RedirectURI    string `mapstructure:"redirect_uri" validate:"omitempty,url"`
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	TokenURL       string `mapstructure:"token_url" validate:"required,url"`
	AuthURL        string `mapstructure:"auth_url" validate:"required,url"`
	ConnectionsURL string `mapstructure:"connections_url" validate:"required,url"`
}

type Secrets struct {
	ID     string `mapstructure:"id"`
	Region string `mapstructure:"region"`
}

var defaults = map[string]any{
	"server.host":                "0.0.0.0",
	"server.port":                "8080",
	"server.shutdown_timeout":    10 * time.Second,
	"upstream.timeout":           15 * time.Second,
	"analytics.base_url":         "https://analyticsdata.googleapis.com",
	"analytics.token_url":        "https://oauth2.googleapis.com/token",
	"commerce.api_version":       "2024-01",
	"accounting.redirect_uri":    "https://ops.gcitires.com/oauth-callback",
	"accounting.base_url":        "https://api.xero.com/api.xro/2.0",
	"accounting.token_url":       "https://identity.xero.com/connect/token",
	"accounting.auth_url":        "https://login.xero.com/identity/connect/authorize",
	"accounting.connections_url": "https://api.xero.com/connections",
	"secrets.region":             "us-east-1",
}

// envBindings maps config keys to the environment names used by the deployment.
var envBindings = map[string]string{
	"server.host":                    "SERVER_HOST",
	"server.port":                    "SERVER_PORT",
	"server.shutdown_timeout":        "SERVER_SHUTDOWN_TIMEOUT",
	"server.cors_allowed_origins":    "CORS_ALLOWED_ORIGINS",
	"upstream.timeout":               "UPSTREAM_TIMEOUT",
	"analytics.property_id":          "GA4_PROPERTY_ID",
	"analytics.api_key":              "GA4_API_KEY",
	"analytics.client_id":            "GA4_CLIENT_ID",
	"analytics.client_secret":        "GA4_CLIENT_SECRET",
	"analytics.refresh_token":        "GA4_REFRESH_TOKEN",
	"analytics.service_account_json": "GA4_SERVICE_ACCOUNT_JSON",
	"analytics.use_sdk":              "GA4_USE_SDK",
	"analytics.cache_tokens":         "GA4_CACHE_TOKENS",
	"analytics.base_url":             "GA4_BASE_URL",
	"analytics.token_url":            "GA4_TOKEN_URL",
	"commerce.store_domain":          "SHOPIFY_STORE_DOMAIN",
	"commerce.admin_token":           "SHOPIFY_ADMIN_TOKEN",
	"commerce.api_version":           "SHOPIFY_API_VERSION",
	"accounting.client_id":           "XERO_CLIENT_ID",
	"accounting.client_secret":       "XERO_CLIENT_SECRET",
	"accounting.refresh_token":       "XERO_REFRESH_TOKEN",
	"accounting.tenant_id":           "XERO_TENANT_ID",
	"accounting.redirect_uri":        "XERO_REDIRECT_URI",
	"accounting.base_url":            "XERO_BASE_URL",
	"accounting.token_url":           "XERO_TOKEN_URL",
	"accounting.auth_url":            "XERO_AUTH_URL",
	"accounting.connections_url":     "XERO_CONNECTIONS_URL",
	"secrets.id":                     "SECRETS_ID",
	"secrets.region":                 "SECRETS_REGION",
}

// Load builds the configuration from defaults, an optional YAML file at path,
// the environment and, when SECRETS_ID is set, AWS Secrets Manager.
func Load(ctx context.Context, path string) (*Config, error) {
	return LoadWith(ctx, path, nil)
}

// LoadWith is Load with an explicit secret source. A nil source falls back to
// Secrets Manager in the configured region.
func LoadWith(ctx context.Context, path string, secrets SecretSource) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if id := v.GetString("secrets.id"); id != "" {
		if secrets == nil {
			src, err := NewSecretsManagerSource(ctx, v.GetString("secrets.region"))
			if err != nil {
				return nil, err
			}
			secrets = src
		}
		if err := applySecrets(ctx, v, secrets, id); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applySecrets(ctx context.Context, v *viper.Viper, src SecretSource, id string) error {
	values, err := src.Fetch(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load secrets %s: %w", id, err)
	}

	byEnv := make(map[string]string, len(envBindings))
	for key, env := range envBindings {
		byEnv[env] = key
	}
	for env, value := range values {
		key, ok := byEnv[env]
		if !ok {
			continue
		}
		v.Set(key, value)
	}
	return nil
}
