package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// apiCreateInvoice handles POST /api/orders/{ref}/invoice.
// Body: { due_date? } as YYYY-MM-DD; the body may be omitted.
func (h *Handler) apiCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DueDate string `json:"due_date"`
	}
	if !decodeOptionalJSON(w, r, &body) {
		return
	}
	result, err := h.svc.CreateInvoice(r.Context(), chi.URLParam(r, "ref"), body.DueDate, actorID(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, result.Invoice)
}

// apiListInvoices handles GET /api/invoices?status=.
func (h *Handler) apiListInvoices(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListInvoices(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoices)
}

// apiGetInvoice handles GET /api/invoices/{id}.
func (h *Handler) apiGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetInvoice(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}

// apiMarkInvoiceSent handles POST /api/invoices/{id}/send.
func (h *Handler) apiMarkInvoiceSent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.MarkInvoiceSent(r.Context(), id, actorID(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}

// apiMarkInvoicePaid handles POST /api/invoices/{id}/paid.
func (h *Handler) apiMarkInvoicePaid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.MarkInvoicePaid(r.Context(), id, actorID(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Invoice)
}

// apiDeleteInvoice handles DELETE /api/invoices/{id}. Deletion is soft; the number is not reused.
func (h *Handler) apiDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteInvoice(r.Context(), id, actorID(r)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
