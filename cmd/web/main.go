package main

import (
	"fmt"
	"net"
	"os"

	"github.com/de-tools/ops-atlas/pkg/server"
	"github.com/de-tools/ops-atlas/pkg/services/config"
	"github.com/de-tools/ops-atlas/pkg/services/registry"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Ops Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to an optional YAML config file; the environment overrides it")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.Load(ctx, cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	services, err := registry.Build(ctx, cfg)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	webAPI := server.NewWebAPI(logger, server.Config{
		Addr:               addr,
		ShutdownTimeout:    cfg.Server.ShutdownTimeout,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Dependencies: server.Dependencies{
			Analytics:  services.Analytics,
			Setup:      services.Setup,
			Commerce:   services.Commerce,
			Accounting: services.Accounting,
		},
	})

	return webAPI.Start()
}
