package domain

import (
	"errors"
	"fmt"
)

var ErrUnknownReport = errors.New("unknown report")

// ConfigurationError means a required configuration value is absent.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s is not set", e.Field)
}

// UpstreamAuthError means a credential exchange was rejected. Status is zero
// when the exchange never got a response.
type UpstreamAuthError struct {
	Upstream string
	Status   int
	Body     string
	Err      error
}

func (e *UpstreamAuthError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s token exchange failed: %v", e.Upstream, e.Err)
	}
	return fmt.Sprintf("%s token exchange failed %d: %s", e.Upstream, e.Status, e.Body)
}

func (e *UpstreamAuthError) Unwrap() error {
	return e.Err
}

// UpstreamReportError means a report or resource call was rejected.
type UpstreamReportError struct {
	Upstream string
	Status   int
	Body     map[string]any
	Err      error
}

func (e *UpstreamReportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s request failed: %v", e.Upstream, e.Err)
	}
	return fmt.Sprintf("%s request failed %d: %v", e.Upstream, e.Status, e.Body)
}

func (e *UpstreamReportError) Unwrap() error {
	return e.Err
}

// NoTenantError is returned when tenant discovery yields zero connections.
type NoTenantError struct {
	Upstream string
}

func (e *NoTenantError) Error() string {
	return fmt.Sprintf("no %s tenants found for this authorisation", e.Upstream)
}

const (
	StageConfig     = "config"
	StageCredential = "credential"
	StageReport     = "report"
	StageUnknown    = "unknown"
)

// Stage names the pipeline step that produced err.
func Stage(err error) string {
	var (
		cfgErr    *ConfigurationError
		authErr   *UpstreamAuthError
		reportErr *UpstreamReportError
		tenantErr *NoTenantError
	)
	switch {
	case errors.As(err, &cfgErr):
		return StageConfig
	case errors.As(err, &authErr), errors.As(err, &tenantErr):
		return StageCredential
	case errors.As(err, &reportErr):
		return StageReport
	default:
		return StageUnknown
	}
}
