package analytics

import (
	"context"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/services/credentials"
)

const Upstream = "ga4"

// Runner executes one report against the analytics upstream.
type Runner interface {
	RunReport(ctx context.Context, spec domain.ReportSpec) (*domain.ReportResult, error)
}

type pipeline struct {
	provider credentials.Provider
	executor Executor
}

// NewPipeline runs acquire and execute as two sequential steps. A failure in
// the first step never reaches the executor.
func NewPipeline(provider credentials.Provider, executor Executor) Runner {
	return &pipeline{provider: provider, executor: executor}
}

func (p *pipeline) RunReport(ctx context.Context, spec domain.ReportSpec) (*domain.ReportResult, error) {
	cred, err := p.provider.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return p.executor.Execute(ctx, cred, spec)
}

type unconfiguredRunner struct {
	err error
}

// NewUnconfiguredRunner fails every call with err.
func NewUnconfiguredRunner(err error) Runner {
	return &unconfiguredRunner{err: err}
}

func (r *unconfiguredRunner) RunReport(_ context.Context, _ domain.ReportSpec) (*domain.ReportResult, error) {
	return nil, r.err
}
