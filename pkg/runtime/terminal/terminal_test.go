package terminal

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/services/credentials"
	"github.com/de-tools/ops-atlas/pkg/services/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) RunReport(ctx context.Context, spec domain.ReportSpec) (*domain.ReportResult, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportResult), args.Error(1)
}

func newTestCLI(services *registry.Services, buildErr error) (*CLI, *bytes.Buffer, *int) {
	var out bytes.Buffer
	builds := 0
	cli := NewCLI(Options{
		Output: &out,
		Build: func(ctx context.Context, path string) (*registry.Services, error) {
			builds++
			return services, buildErr
		},
	})
	return cli, &out, &builds
}

func TestReportCommand(t *testing.T) {
	runner := new(mockRunner)
	runner.On("RunReport", mock.Anything, mock.MatchedBy(func(spec domain.ReportSpec) bool {
		return spec.Kind() == domain.ReportOverview &&
			spec.DateRange() == domain.DateRange{Start: "2024-01-01", End: "today"}
	})).Return(&domain.ReportResult{
		Dimensions: []string{"date"},
		Metrics:    []string{"sessions", "activeUsers", "newUsers", "bounceRate", "averageSessionDuration"},
		Rows: []domain.ReportRow{
			{"date": "20240101", "sessions": "10"},
			{"date": "20240102", "sessions": "15"},
		},
		RowCount: 2,
	}, nil)

	cli, out, builds := newTestCLI(&registry.Services{Analytics: runner}, nil)
	cli.SetArgs([]string{"report", "--name", "overview", "--start", "2024-01-01"})

	require.NoError(t, cli.Execute())

	output := out.String()
	assert.Contains(t, output, "overview report")
	assert.Contains(t, output, "Period: 2024-01-01 to today")
	assert.Contains(t, output, "Total Sessions: 25")
	assert.Contains(t, output, "| 20240101 ")
	assert.Contains(t, output, "| sessions ")
	assert.Equal(t, 1, *builds)
	runner.AssertExpectations(t)
}

func TestReportCommand_UnknownName(t *testing.T) {
	cli, _, builds := newTestCLI(&registry.Services{Analytics: new(mockRunner)}, nil)
	cli.SetArgs([]string{"report", "--name", "funnel"})

	err := cli.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "overview | top-pages | traffic-sources | conversions")
	assert.Zero(t, *builds)
}

func TestReportCommand_RunnerError(t *testing.T) {
	runner := new(mockRunner)
	runner.On("RunReport", mock.Anything, mock.Anything).
		Return(nil, &domain.ConfigurationError{Field: "property_id"})

	cli, _, _ := newTestCLI(&registry.Services{Analytics: runner}, nil)
	cli.SetArgs([]string{"report", "--name", "top-pages"})

	err := cli.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config stage")
	var cfgErr *domain.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestReportCommand_BuildError(t *testing.T) {
	cli, _, _ := newTestCLI(nil, errors.New("failed to load config"))
	cli.SetArgs([]string{"report", "--name", "overview"})

	assert.EqualError(t, cli.Execute(), "failed to load config")
}

func TestAuthorizeURLCommand(t *testing.T) {
	flow := credentials.NewAuthCodeFlow(credentials.AuthCodeConfig{
		Upstream:    "xero",
		ClientID:    "client-id",
		RedirectURI: "https://ops.example.com/oauth-callback",
	})

	cli, out, _ := newTestCLI(&registry.Services{Setup: flow}, nil)
	cli.SetArgs([]string{"authorize-url"})

	require.NoError(t, cli.Execute())
	assert.Contains(t, out.String(), "https://login.xero.com/identity/connect/authorize?")
	assert.Contains(t, out.String(), "client_id=client-id")
}

func TestExchangeCodeCommand_RequiresCode(t *testing.T) {
	cli, _, builds := newTestCLI(&registry.Services{}, nil)
	cli.SetArgs([]string{"exchange-code"})

	err := cli.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"code"`)
	assert.Zero(t, *builds)
}

func TestExchangeCodeCommand_NotConfigured(t *testing.T) {
	cli, _, _ := newTestCLI(&registry.Services{}, nil)
	cli.SetArgs([]string{"exchange-code", "--code", "abc"})

	assert.EqualError(t, cli.Execute(), "accounting setup is not configured")
}
