package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"ops-portal/internal/app"
)

// orderLineBody is the JSON shape of an order line. Decimals accept numbers or strings.
type orderLineBody struct {
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

func toLineRequests(lines []orderLineBody) []app.OrderLineInput {
	if lines == nil {
		return nil
	}
	out := make([]app.OrderLineInput, len(lines))
	for i, l := range lines {
		out[i] = app.OrderLineInput{
			Description:     l.Description,
			Quantity:        l.Quantity,
			Unit:            l.Unit,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
		}
	}
	return out
}

// orderBody is the JSON body for creating a main order or an extra-work order.
type orderBody struct {
	CustomerID int              `json:"customer_id"`
	Title      string           `json:"title"`
	Terms      string           `json:"terms"`
	VatRate    *decimal.Decimal `json:"vat_rate"`
	Lines      []orderLineBody  `json:"lines"`
}

func (b orderBody) request(actor int) app.CreateOrderRequest {
	return app.CreateOrderRequest{
		CustomerID: b.CustomerID,
		Title:      b.Title,
		Terms:      b.Terms,
		VatRate:    b.VatRate,
		Lines:      toLineRequests(b.Lines),
		ActorID:    actor,
	}
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
		return false
	}
	writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
	return false
}

// apiListOrders handles GET /api/orders?status=&customer_id=&include_extras=.
func (h *Handler) apiListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := app.ListOrdersRequest{Status: q.Get("status")}
	if v := q.Get("customer_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, "customer_id must be an integer", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.CustomerID = id
	}
	if v := q.Get("include_extras"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, "include_extras must be a boolean", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.IncludeExtras = b
	}

	result, err := h.svc.ListOrders(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Orders)
}

// apiGetOrder handles GET /api/orders/{ref}.
func (h *Handler) apiGetOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOrder(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Order)
}

// apiCreateOrder handles POST /api/orders.
// Body: { customer_id, title, terms?, vat_rate?, lines: [{description, quantity, unit?, unit_price, discount_percent?}] }
func (h *Handler) apiCreateOrder(w http.ResponseWriter, r *http.Request) {
	var body orderBody
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.CreateOrder(r.Context(), body.request(actorID(r)))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, result.Order)
}

// apiCreateExtraWork handles POST /api/orders/{ref}/extra-work.
// The body has the same shape as apiCreateOrder; customer_id and vat_rate come from the parent.
func (h *Handler) apiCreateExtraWork(w http.ResponseWriter, r *http.Request) {
	var body orderBody
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.CreateExtraWork(r.Context(), chi.URLParam(r, "ref"), body.request(actorID(r)))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, result.Order)
}

// apiUpdateOrder handles PUT /api/orders/{ref}. Omitted fields are left unchanged;
// an omitted "lines" key keeps the current lines.
func (h *Handler) apiUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CustomerID *int             `json:"customer_id"`
		Title      *string          `json:"title"`
		Terms      *string          `json:"terms"`
		VatRate    *decimal.Decimal `json:"vat_rate"`
		Lines      []orderLineBody  `json:"lines"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.UpdateOrder(r.Context(), chi.URLParam(r, "ref"), app.UpdateOrderRequest{
		CustomerID: body.CustomerID,
		Title:      body.Title,
		Terms:      body.Terms,
		VatRate:    body.VatRate,
		Lines:      toLineRequests(body.Lines),
		ActorID:    actorID(r),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Order)
}

// apiDeleteOrder handles DELETE /api/orders/{ref}.
func (h *Handler) apiDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteOrder(r.Context(), chi.URLParam(r, "ref"), actorID(r)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type orderTransition func(ctx context.Context, ref string, actorID int) (*app.OrderResult, error)

// transitionOrder serves POST /api/orders/{ref}/{send,accept,reject,revert}.
func (h *Handler) transitionOrder(fn orderTransition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := fn(r.Context(), chi.URLParam(r, "ref"), actorID(r))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, result.Order)
	}
}

// apiGetWorkspace handles GET /api/orders/{ref}/workspace.
func (h *Handler) apiGetWorkspace(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetWorkspace(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Workspace)
}

// apiGetTimeline handles GET /api/orders/{ref}/timeline.
func (h *Handler) apiGetTimeline(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetTimeline(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	type response struct {
		OrderID       int    `json:"order_id"`
		DisplayNumber string `json:"display_number"`
		Activities    any    `json:"activities"`
	}
	writeJSON(w, response{
		OrderID:       result.OrderID,
		DisplayNumber: result.DisplayNumber,
		Activities:    result.Activities,
	})
}
