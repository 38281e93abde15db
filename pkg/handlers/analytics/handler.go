package analytics

import (
	"errors"
	"net/http"

	"github.com/de-tools/ops-atlas/pkg/adapters"
	"github.com/de-tools/ops-atlas/pkg/handlers/respond"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/services/analytics"
	"github.com/rs/zerolog"
)

type Handler struct {
	runner analytics.Runner
}

func NewHandler(runner analytics.Runner) *Handler {
	return &Handler{runner: runner}
}

// GetReport serves GET /report?report=&startDate=&endDate=.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	spec, err := domain.LookupReport(query.Get("report"), query.Get("startDate"), query.Get("endDate"))
	if errors.Is(err, domain.ErrUnknownReport) {
		respond.Error(w, r, http.StatusBadRequest, "Unknown report. Use: "+domain.ReportNames())
		return
	}
	if err != nil {
		respond.Internal(w, r, analytics.Upstream, domain.StageUnknown, err)
		return
	}

	result, err := h.runner.RunReport(ctx, spec)
	if err != nil {
		respond.Internal(w, r, analytics.Upstream, domain.Stage(err), err)
		return
	}

	zerolog.Ctx(ctx).Debug().
		Str("report", string(spec.Kind())).
		Int("rows", len(result.Rows)).
		Msg("report served")
	respond.JSON(w, r, http.StatusOK, adapters.MapReportResultDomainToApi(spec.Kind(), *result))
}
