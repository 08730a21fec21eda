package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"ops-portal/internal/app"
)

// apiRecordExpense handles POST /api/orders/{ref}/expenses.
// Body: { amount, expense_date?, category?, description? }
func (h *Handler) apiRecordExpense(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount      decimal.Decimal `json:"amount"`
		ExpenseDate string          `json:"expense_date"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.RecordExpense(r.Context(), app.RecordExpenseRequest{
		OrderRef:    chi.URLParam(r, "ref"),
		Amount:      body.Amount,
		ExpenseDate: body.ExpenseDate,
		Category:    body.Category,
		Description: body.Description,
		ActorID:     actorID(r),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, result.Expense)
}

// apiListExpenses handles GET /api/orders/{ref}/expenses.
func (h *Handler) apiListExpenses(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListExpenses(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	type response struct {
		Expenses any    `json:"expenses"`
		Total    string `json:"total"`
	}
	writeJSON(w, response{Expenses: result.Expenses, Total: result.Total})
}

// apiDeleteExpense handles DELETE /api/expenses/{id}.
func (h *Handler) apiDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteExpense(r.Context(), id, actorID(r)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
