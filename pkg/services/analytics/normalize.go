package analytics

import (
	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/models/store"
)

// Normalize zips each raw row with the spec's field names. Every row gets every
// dimension and metric key; values the upstream omitted become "".
func Normalize(spec domain.ReportSpec, rows []store.Row) []domain.ReportRow {
	dimensions := spec.Dimensions()
	metrics := spec.Metrics()

	out := make([]domain.ReportRow, 0, len(rows))
	for _, row := range rows {
		record := make(domain.ReportRow, len(dimensions)+len(metrics))
		for i, name := range dimensions {
			record[name] = valueAt(row.DimensionValues, i)
		}
		for i, name := range metrics {
			record[name] = valueAt(row.MetricValues, i)
		}
		out = append(out, record)
	}
	return out
}

func valueAt(values []*store.FieldValue, i int) string {
	if i >= len(values) || values[i] == nil || values[i].Value == nil {
		return ""
	}
	return *values[i].Value
}

// BuildResult normalizes resp. The upstream rowCount wins when present, even
// if it disagrees with the rows actually returned.
func BuildResult(spec domain.ReportSpec, resp store.RunReportResponse) *domain.ReportResult {
	rows := Normalize(spec, resp.Rows)

	rowCount := len(rows)
	if resp.RowCount != nil {
		rowCount = *resp.RowCount
	}

	return &domain.ReportResult{
		Dimensions: spec.Dimensions(),
		Metrics:    spec.Metrics(),
		Rows:       rows,
		RowCount:   rowCount,
	}
}
