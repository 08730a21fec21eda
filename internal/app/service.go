package app

import (
	"context"
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
//
// Order references (ref) are either a numeric order ID or a display number
// prefixed with "#", e.g. "#0042" or "#0042-03". A ref containing "-" is
// always treated as a display number.
type ApplicationService interface {
	// ── Customers ────────────────────────────────────────────────────────────

	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*CustomerResult, error)
	GetCustomer(ctx context.Context, id int) (*CustomerResult, error)
	ListCustomers(ctx context.Context) (*CustomerListResult, error)

	// ── Orders ───────────────────────────────────────────────────────────────

	// CreateOrder creates a new draft main order.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error)

	// CreateExtraWork creates an accepted extra-work order under the main order parentRef.
	CreateExtraWork(ctx context.Context, parentRef string, req CreateOrderRequest) (*OrderResult, error)

	// UpdateOrder edits title, terms, VAT rate, customer or lines and recomputes totals.
	UpdateOrder(ctx context.Context, ref string, req UpdateOrderRequest) (*OrderResult, error)

	// DeleteOrder removes an order that has neither extra work nor a live invoice.
	DeleteOrder(ctx context.Context, ref string, actorID int) error

	GetOrder(ctx context.Context, ref string) (*OrderResult, error)

	// ListOrders returns order rows with their quick financial aggregate.
	ListOrders(ctx context.Context, req ListOrdersRequest) (*OrderListResult, error)

	// SendOrder transitions draft → sent. The customer must have an email address.
	SendOrder(ctx context.Context, ref string, actorID int) (*OrderResult, error)

	// AcceptOrder transitions draft/sent → accepted.
	AcceptOrder(ctx context.Context, ref string, actorID int) (*OrderResult, error)

	// RejectOrder transitions draft/sent → rejected.
	RejectOrder(ctx context.Context, ref string, actorID int) (*OrderResult, error)

	// RevertOrder transitions accepted/rejected → draft, unless the order is invoiced.
	RevertOrder(ctx context.Context, ref string, actorID int) (*OrderResult, error)

	// GetWorkspace returns the order detail view with its financial rollup.
	GetWorkspace(ctx context.Context, ref string) (*WorkspaceResult, error)

	// GetTimeline returns the recorded activity of an order, oldest first.
	GetTimeline(ctx context.Context, ref string) (*TimelineResult, error)

	// ── Invoices ─────────────────────────────────────────────────────────────

	// CreateInvoice snapshots an accepted order into a draft invoice.
	// dueDate is YYYY-MM-DD; empty means the configured default term.
	CreateInvoice(ctx context.Context, ref, dueDate string, actorID int) (*InvoiceResult, error)
	GetInvoice(ctx context.Context, id int) (*InvoiceResult, error)
	ListInvoices(ctx context.Context, status string) (*InvoiceListResult, error)
	MarkInvoiceSent(ctx context.Context, id, actorID int) (*InvoiceResult, error)
	MarkInvoicePaid(ctx context.Context, id, actorID int) (*InvoiceResult, error)
	DeleteInvoice(ctx context.Context, id, actorID int) error

	// ── Expenses ─────────────────────────────────────────────────────────────

	RecordExpense(ctx context.Context, req RecordExpenseRequest) (*ExpenseResult, error)
	ListExpenses(ctx context.Context, ref string) (*ExpenseListResult, error)
	DeleteExpense(ctx context.Context, id, actorID int) error

	// ── Users ────────────────────────────────────────────────────────────────

	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)

	// CreateUser registers a portal login.
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResult, error)

	// GetUser returns user profile by ID.
	GetUser(ctx context.Context, userID int) (*UserResult, error)
}
