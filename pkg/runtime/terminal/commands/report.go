package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/ops-atlas/pkg/services/analytics"
	"github.com/spf13/cobra"
)

const commandTimeout = 60 * time.Second

type ReportCmd struct {
	name     string
	start    string
	end      string
	runner   func() (analytics.Runner, error)
	reporter *export.Reporter
}

// NewReportCmd runs one catalogue report. runner is resolved when the command
// executes so the config is only loaded for the command that needs it.
func NewReportCmd(runner func() (analytics.Runner, error), reporter *export.Reporter) *cobra.Command {
	rc := &ReportCmd{runner: runner, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run an analytics report",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.name, "name", "", "Report to run ("+domain.ReportNames()+")")
	cmd.Flags().StringVar(&rc.start, "start", "", "Start date expression (default 7daysAgo)")
	cmd.Flags().StringVar(&rc.end, "end", "", "End date expression (default today)")

	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, _ []string) error {
	spec, err := domain.LookupReport(rc.name, rc.start, rc.end)
	if err != nil {
		return fmt.Errorf("unsupported report %q. Supported reports: %s", rc.name, domain.ReportNames())
	}

	runner, err := rc.runner()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	result, err := runner.RunReport(ctx, spec)
	if err != nil {
		return fmt.Errorf("failed to run %s report (%s stage): %w", rc.name, domain.Stage(err), err)
	}

	return rc.reporter.Handle(spec, result)
}
