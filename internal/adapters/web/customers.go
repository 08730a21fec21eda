package web

import (
	"net/http"

	"ops-portal/internal/app"
)

// apiListCustomers handles GET /api/customers.
func (h *Handler) apiListCustomers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Customers)
}

// apiCreateCustomer handles POST /api/customers.
func (h *Handler) apiCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.CreateCustomer(r.Context(), app.CreateCustomerRequest{
		Name:    body.Name,
		Email:   body.Email,
		Phone:   body.Phone,
		Address: body.Address,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, result.Customer)
}

// apiGetCustomer handles GET /api/customers/{id}.
func (h *Handler) apiGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetCustomer(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Customer)
}
