package commerce

import (
	"net/http"
	"strconv"

	"github.com/de-tools/ops-atlas/pkg/adapters"
	"github.com/de-tools/ops-atlas/pkg/handlers/respond"
	"github.com/de-tools/ops-atlas/pkg/models/api"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/services/commerce"
)

const unknownResource = "Unknown resource. Use: today-orders | orders | products | revenue"

type Handler struct {
	client commerce.Client
}

func NewHandler(client commerce.Client) *Handler {
	return &Handler{client: client}
}

// GetResource serves GET /shopify?resource=&limit=&status=&since=.
func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var (
		body any
		err  error
	)
	switch query.Get("resource") {
	case "today-orders":
		var count int
		count, err = h.client.TodayOrderCount(ctx)
		body = api.CountResponse{Count: count}
	case "orders":
		orders, fetchErr := h.client.Orders(ctx, limitParam(query.Get("limit")), query.Get("status"))
		err = fetchErr
		body = adapters.MapOrdersStoreToApi(orders)
	case "products":
		products, fetchErr := h.client.Products(ctx, limitParam(query.Get("limit")))
		err = fetchErr
		body = adapters.MapProductsStoreToApi(products)
	case "revenue":
		revenue, fetchErr := h.client.Revenue(ctx, query.Get("since"))
		err = fetchErr
		body = api.RevenueResponse{Total: revenue.Total, Count: revenue.Count}
	default:
		respond.Error(w, r, http.StatusBadRequest, unknownResource)
		return
	}

	if err != nil {
		respond.Internal(w, r, commerce.Upstream, domain.Stage(err), err)
		return
	}
	respond.JSON(w, r, http.StatusOK, body)
}

// limitParam falls back to the client default for anything but a positive integer.
func limitParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return commerce.DefaultLimit
	}
	return n
}
