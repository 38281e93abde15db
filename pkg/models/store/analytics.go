package store

type NamedField struct {
	Name string `json:"name"`
}

type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type RunReportRequest struct {
	Dimensions []NamedField `json:"dimensions"`
	Metrics    []NamedField `json:"metrics"`
	DateRanges []DateRange  `json:"dateRanges"`
}

// FieldValue is a nil-able cell; upstream may send null entries.
type FieldValue struct {
	Value *string `json:"value,omitempty"`
}

type Row struct {
	DimensionValues []*FieldValue `json:"dimensionValues,omitempty"`
	MetricValues    []*FieldValue `json:"metricValues,omitempty"`
}

type RunReportResponse struct {
	Rows     []Row `json:"rows,omitempty"`
	RowCount *int  `json:"rowCount,omitempty"`
}
