package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Acquire(ctx context.Context) (domain.Credential, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Credential), args.Error(1)
}

type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Execute(
	ctx context.Context,
	cred domain.Credential,
	spec domain.ReportSpec,
) (*domain.ReportResult, error) {
	args := m.Called(ctx, cred, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportResult), args.Error(1)
}

func TestPipeline_RunReport(t *testing.T) {
	spec, err := domain.LookupReport("overview", "", "")
	require.NoError(t, err)
	cred := domain.Credential{Token: "tok", Scheme: domain.SchemeBearer}

	tests := []struct {
		name          string
		setupMocks    func(*mockProvider, *mockExecutor)
		expectedStage string
		executeCalls  int
	}{
		{
			name: "success",
			setupMocks: func(p *mockProvider, e *mockExecutor) {
				p.On("Acquire", mock.Anything).Return(cred, nil)
				e.On("Execute", mock.Anything, cred, spec).Return(&domain.ReportResult{RowCount: 1}, nil)
			},
			executeCalls: 1,
		},
		{
			name: "credential failure never reaches the executor",
			setupMocks: func(p *mockProvider, e *mockExecutor) {
				p.On("Acquire", mock.Anything).
					Return(domain.Credential{}, &domain.UpstreamAuthError{Upstream: "google-oauth", Status: 400, Body: "invalid_grant"})
			},
			expectedStage: domain.StageCredential,
		},
		{
			name: "report failure",
			setupMocks: func(p *mockProvider, e *mockExecutor) {
				p.On("Acquire", mock.Anything).Return(cred, nil)
				e.On("Execute", mock.Anything, cred, spec).
					Return(nil, &domain.UpstreamReportError{Upstream: Upstream, Status: 403})
			},
			expectedStage: domain.StageReport,
			executeCalls:  1,
		},
		{
			name: "missing configuration",
			setupMocks: func(p *mockProvider, e *mockExecutor) {
				p.On("Acquire", mock.Anything).Return(domain.Credential{}, &domain.ConfigurationError{Field: "api_key"})
			},
			expectedStage: domain.StageConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(mockProvider)
			executor := new(mockExecutor)
			tt.setupMocks(provider, executor)

			result, err := NewPipeline(provider, executor).RunReport(testContext(t), spec)

			if tt.expectedStage == "" {
				require.NoError(t, err)
				assert.Equal(t, 1, result.RowCount)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.expectedStage, domain.Stage(err))
			}

			provider.AssertExpectations(t)
			executor.AssertExpectations(t)
			executor.AssertNumberOfCalls(t, "Execute", tt.executeCalls)
		})
	}
}

func TestUnconfiguredRunner(t *testing.T) {
	spec, err := domain.LookupReport("overview", "", "")
	require.NoError(t, err)

	want := &domain.ConfigurationError{Field: "analytics credentials"}
	_, err = NewUnconfiguredRunner(want).RunReport(testContext(t), spec)

	assert.True(t, errors.Is(err, want))
	assert.Equal(t, domain.StageConfig, domain.Stage(err))
}
