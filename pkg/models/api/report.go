package api

type ErrorResponse struct {
	Error string `json:"error"`
}

type ReportResponse struct {
	Dimensions    []string            `json:"dimensions"`
	Metrics       []string            `json:"metrics"`
	Rows          []map[string]string `json:"rows"`
	RowCount      int                 `json:"rowCount"`
	TotalSessions *int                `json:"totalSessions,omitempty"`
}

type AuthorizeURLResponse struct {
	URL string `json:"url"`
}

type SetupResponse struct {
	Message      string `json:"message"`
	RefreshToken string `json:"refreshToken"`
	TenantID     string `json:"tenantId"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
