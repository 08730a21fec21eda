package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ops-portal/internal/app"
)

// DefaultMaxBodyBytes caps JSON request bodies when no limit is configured.
const DefaultMaxBodyBytes = 1 << 20

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
	log       *zap.Logger
}

// Options configures NewHandler.
type Options struct {
	AllowedOrigins string // comma-separated; empty disables CORS
	JWTSecret      string
	MaxBodyBytes   int64
	Logger         *zap.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	h := &Handler{
		svc:       svc,
		jwtSecret: opts.JWTSecret,
		log:       opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(h.log))
	r.Use(Recoverer(h.log))
	r.Use(CORS(opts.AllowedOrigins))
	r.Use(RequestBodyLimit(opts.MaxBodyBytes))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Auth (public API) ─────────────────────────────────────────────────────
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/api/auth/me", h.me)
		r.With(RequireAdmin).Post("/api/users", h.createUser)

		// Customers
		r.Get("/api/customers", h.apiListCustomers)
		r.Post("/api/customers", h.apiCreateCustomer)
		r.Get("/api/customers/{id}", h.apiGetCustomer)

		// Orders
		r.Get("/api/orders", h.apiListOrders)
		r.Post("/api/orders", h.apiCreateOrder)
		r.Get("/api/orders/{ref}", h.apiGetOrder)
		r.Put("/api/orders/{ref}", h.apiUpdateOrder)
		r.Delete("/api/orders/{ref}", h.apiDeleteOrder)
		r.Post("/api/orders/{ref}/send", h.transitionOrder(svc.SendOrder))
		r.Post("/api/orders/{ref}/accept", h.transitionOrder(svc.AcceptOrder))
		r.Post("/api/orders/{ref}/reject", h.transitionOrder(svc.RejectOrder))
		r.Post("/api/orders/{ref}/revert", h.transitionOrder(svc.RevertOrder))
		r.Post("/api/orders/{ref}/extra-work", h.apiCreateExtraWork)
		r.Get("/api/orders/{ref}/workspace", h.apiGetWorkspace)
		r.Get("/api/orders/{ref}/timeline", h.apiGetTimeline)
		r.Post("/api/orders/{ref}/invoice", h.apiCreateInvoice)
		r.Get("/api/orders/{ref}/expenses", h.apiListExpenses)
		r.Post("/api/orders/{ref}/expenses", h.apiRecordExpense)

		// Expenses
		r.Delete("/api/expenses/{id}", h.apiDeleteExpense)

		// Invoices
		r.Get("/api/invoices", h.apiListInvoices)
		r.Get("/api/invoices/{id}", h.apiGetInvoice)
		r.Delete("/api/invoices/{id}", h.apiDeleteInvoice)
		r.Post("/api/invoices/{id}/send", h.apiMarkInvoiceSent)
		r.Post("/api/invoices/{id}/paid", h.apiMarkInvoicePaid)
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// pathID parses the {id} URL parameter. On failure it writes a 400 and returns false.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		writeError(w, r, fmt.Sprintf("invalid id %q", raw), "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
