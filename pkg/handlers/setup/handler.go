package setup

import (
	"context"
	"net/http"

	"github.com/de-tools/ops-atlas/pkg/adapters"
	"github.com/de-tools/ops-atlas/pkg/handlers/respond"
	"github.com/de-tools/ops-atlas/pkg/models/api"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/services/accounting"
	"github.com/de-tools/ops-atlas/pkg/services/credentials"
)

// Flow is the one-shot authorization-code exchange.
type Flow interface {
	AuthorizeURL() (string, error)
	Exchange(ctx context.Context, code string) (*credentials.SetupResult, error)
}

type Handler struct {
	flow Flow
}

func NewHandler(flow Flow) *Handler {
	return &Handler{flow: flow}
}

func (h *Handler) AuthorizeURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.flow.AuthorizeURL()
	if err != nil {
		respond.Internal(w, r, accounting.Upstream, domain.Stage(err), err)
		return
	}
	respond.JSON(w, r, http.StatusOK, api.AuthorizeURLResponse{URL: url})
}

// OAuthCallback completes the consent redirect. The minted values are shown
// to the operator once and never stored.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respond.Error(w, r, http.StatusBadRequest, "Missing code parameter")
		return
	}

	result, err := h.flow.Exchange(r.Context(), code)
	if err != nil {
		respond.Internal(w, r, accounting.Upstream, domain.Stage(err), err)
		return
	}
	respond.JSON(w, r, http.StatusOK, adapters.MapSetupResultToApi(result.RefreshToken, result.TenantID))
}
