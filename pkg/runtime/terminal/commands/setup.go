package commands

import (
	"context"
	"fmt"

	"github.com/de-tools/ops-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/ops-atlas/pkg/services/credentials"
	"github.com/spf13/cobra"
)

// SetupFlow is the authorization-code exchange used by the setup commands.
type SetupFlow interface {
	AuthorizeURL() (string, error)
	Exchange(ctx context.Context, code string) (*credentials.SetupResult, error)
}

func NewAuthorizeURLCmd(flow func() (SetupFlow, error), reporter *export.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "authorize-url",
		Short: "Print the accounting consent URL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := flow()
			if err != nil {
				return err
			}
			url, err := f.AuthorizeURL()
			if err != nil {
				return fmt.Errorf("failed to build authorize url: %w", err)
			}
			return reporter.HandleAuthorizeURL(url)
		},
	}
}

func NewExchangeCodeCmd(flow func() (SetupFlow, error), reporter *export.Reporter) *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "exchange-code",
		Short: "Exchange an authorization code for a refresh token and tenant id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := flow()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			result, err := f.Exchange(ctx, code)
			if err != nil {
				return fmt.Errorf("failed to exchange code: %w", err)
			}
			return reporter.HandleSetup(result)
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code from the consent redirect")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}
