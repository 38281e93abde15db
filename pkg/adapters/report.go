package adapters

import (
	"maps"

	"github.com/de-tools/ops-atlas/pkg/models/api"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
)

func MapReportResultDomainToApi(kind domain.ReportKind, result domain.ReportResult) api.ReportResponse {
	resp := api.ReportResponse{
		Dimensions: nonNil(result.Dimensions),
		Metrics:    nonNil(result.Metrics),
		Rows:       make([]map[string]string, 0, len(result.Rows)),
		RowCount:   result.RowCount,
	}
	for _, row := range result.Rows {
		resp.Rows = append(resp.Rows, maps.Clone(map[string]string(row)))
	}

	if kind == domain.ReportOverview {
		total := domain.TotalSessions(result.Rows)
		resp.TotalSessions = &total
	}
	return resp
}

func MapSetupResultToApi(refreshToken, tenantID string) api.SetupResponse {
	return api.SetupResponse{
		Message:      "Copy these values into your deployment configuration",
		RefreshToken: refreshToken,
		TenantID:     tenantID,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
