package accounting

import (
	"net/http"

	"github.com/de-tools/ops-atlas/pkg/adapters"
	"github.com/de-tools/ops-atlas/pkg/handlers/respond"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/services/accounting"
)

const unknownResource = "Unknown resource. Use: invoices | balance-sheet | profit-loss | accounts"

type Handler struct {
	client accounting.Client
}

func NewHandler(client accounting.Client) *Handler {
	return &Handler{client: client}
}

// GetResource serves GET /xero?resource=&status=&date=&fromDate=&toDate=.
// Reports are passed through unchanged.
func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var (
		body any
		err  error
	)
	switch query.Get("resource") {
	case "invoices":
		invoices, fetchErr := h.client.Invoices(ctx, query.Get("status"))
		err = fetchErr
		body = adapters.MapInvoicesStoreToApi(invoices)
	case "balance-sheet":
		body, err = h.client.BalanceSheet(ctx, query.Get("date"))
	case "profit-loss":
		body, err = h.client.ProfitAndLoss(ctx, query.Get("fromDate"), query.Get("toDate"))
	case "accounts":
		accounts, fetchErr := h.client.Accounts(ctx)
		err = fetchErr
		body = adapters.MapAccountsStoreToApi(accounts)
	default:
		respond.Error(w, r, http.StatusBadRequest, unknownResource)
		return
	}

	if err != nil {
		respond.Internal(w, r, accounting.Upstream, domain.Stage(err), err)
		return
	}
	respond.JSON(w, r, http.StatusOK, body)
}
