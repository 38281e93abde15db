package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/de-tools/ops-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/ops-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/ops-atlas/pkg/services/analytics"
	"github.com/de-tools/ops-atlas/pkg/services/config"
	"github.com/de-tools/ops-atlas/pkg/services/registry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	cfgPath  string
	build    BuildFunc
	logger   zerolog.Logger
	reporter *export.Reporter
	rootCmd  *cobra.Command

	once     sync.Once
	services *registry.Services
	err      error
}

// BuildFunc assembles the services from the config file at path.
type BuildFunc func(ctx context.Context, path string) (*registry.Services, error)

// Options contain configuration for the CLI
type Options struct {
	Build  BuildFunc
	Logger *zerolog.Logger
	Output io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Build == nil {
		opts.Build = defaultBuild
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	cli := &CLI{
		build:    opts.Build,
		logger:   logger,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(cli.logger.WithContext(ctx))
}

// SetArgs overrides os.Args, for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ops-atlas",
		Short:         "Operations dashboard tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&cli.cfgPath, "config", "c", "",
		"Path to an optional YAML config file; the environment overrides it")

	cmd.AddCommand(commands.NewReportCmd(cli.analytics(cmd), cli.reporter))
	cmd.AddCommand(commands.NewAuthorizeURLCmd(cli.setup(cmd), cli.reporter))
	cmd.AddCommand(commands.NewExchangeCodeCmd(cli.setup(cmd), cli.reporter))

	return cmd
}

func (cli *CLI) loadServices(cmd *cobra.Command) (*registry.Services, error) {
	cli.once.Do(func() {
		cli.services, cli.err = cli.build(cmd.Context(), cli.cfgPath)
	})
	return cli.services, cli.err
}

func (cli *CLI) analytics(root *cobra.Command) func() (analytics.Runner, error) {
	return func() (analytics.Runner, error) {
		services, err := cli.loadServices(root)
		if err != nil {
			return nil, err
		}
		if services.Analytics == nil {
			return nil, fmt.Errorf("analytics is not configured")
		}
		return services.Analytics, nil
	}
}

func (cli *CLI) setup(root *cobra.Command) func() (commands.SetupFlow, error) {
	return func() (commands.SetupFlow, error) {
		services, err := cli.loadServices(root)
		if err != nil {
			return nil, err
		}
		if services.Setup == nil {
			return nil, fmt.Errorf("accounting setup is not configured")
		}
		return services.Setup, nil
	}
}

func defaultBuild(ctx context.Context, path string) (*registry.Services, error) {
	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return registry.Build(ctx, cfg)
}
