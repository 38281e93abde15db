package main

import (
	"context"
	"fmt"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/de-tools/ops-atlas/pkg/runtime/lambda"
	"github.com/de-tools/ops-atlas/pkg/server"
	"github.com/de-tools/ops-atlas/pkg/services/config"
	"github.com/de-tools/ops-atlas/pkg/services/registry"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	adapter, err := newAdapter(ctx, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to start")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	awslambda.Start(adapter.Handle)
}

func newAdapter(ctx context.Context, logger zerolog.Logger) (*lambda.Adapter, error) {
	cfg, err := config.Load(ctx, os.Getenv("OPS_ATLAS_CONFIG"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	services, err := registry.Build(ctx, cfg)
	if err != nil {
		return nil, err
	}

	router := server.ConfigureRouter(logger, server.Config{
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Dependencies: server.Dependencies{
			Analytics:  services.Analytics,
			Setup:      services.Setup,
			Commerce:   services.Commerce,
			Accounting: services.Accounting,
		},
	})
	return lambda.NewAdapter(logger, router), nil
}
