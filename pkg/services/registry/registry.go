// Package registry assembles the upstream services from a loaded config. It
// is shared by the web server, the serverless handler and the operator CLI.
package registry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/de-tools/ops-atlas/pkg/services/accounting"
	"github.com/de-tools/ops-atlas/pkg/services/analytics"
	"github.com/de-tools/ops-atlas/pkg/services/commerce"
	"github.com/de-tools/ops-atlas/pkg/services/config"
	"github.com/de-tools/ops-atlas/pkg/services/credentials"
	"github.com/rs/zerolog"
)

type Services struct {
	Analytics         analytics.Runner
	AnalyticsStrategy credentials.Strategy
	Setup             *credentials.AuthCodeFlow
	Commerce          commerce.Client
	Accounting        accounting.Client
}

// Build wires every upstream client. Only the analytics strategy is checked
// eagerly; the other upstreams report missing values on first use.
func Build(ctx context.Context, cfg *config.Config) (*Services, error) {
	logger := zerolog.Ctx(ctx)
	// Each upstream instruments its own copy under its label.
	base := &http.Client{Timeout: cfg.Upstream.Timeout}

	runner, strategy, err := analytics.FromConfig(ctx, cfg.Analytics, base)
	if err != nil {
		return nil, fmt.Errorf("failed to configure analytics: %w", err)
	}

	services := &Services{
		Analytics:         runner,
		AnalyticsStrategy: strategy,
		Setup:             accounting.SetupFromConfig(cfg.Accounting, base),
		Commerce:          commerce.FromConfig(cfg.Commerce, base),
		Accounting:        accounting.FromConfig(cfg.Accounting, base),
	}

	logger.Info().
		Str("analytics_strategy", string(strategy)).
		Bool("commerce_configured", cfg.Commerce.StoreDomain != "" && cfg.Commerce.AdminToken != "").
		Bool("accounting_configured", cfg.Accounting.RefreshToken != "" && cfg.Accounting.TenantID != "").
		Msg("services configured")
	return services, nil
}
