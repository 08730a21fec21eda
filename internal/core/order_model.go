package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a quote/order. Transitions are defined in state.go.
type OrderStatus string

const (
	StatusDraft    OrderStatus = "draft"
	StatusSent     OrderStatus = "sent"
	StatusAccepted OrderStatus = "accepted"
	StatusRejected OrderStatus = "rejected"
)

// IsValid reports whether s is one of the four known statuses.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// InvoiceStatus progresses draft → sent → paid.
type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"
)

// Customer is the minimal customer master record the order engine reads.
type Customer struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// Order is used both as a quote and as an order depending on Status.
//
// A main order has no parent and owns a 4-digit OrderNumber. An extra-work order
// points at its main order, stores the parent's OrderNumber and a SubNumber.
// Use Kind to branch on the two shapes.
type Order struct {
	ID            int             `json:"id"`
	OrderNumber   string          `json:"order_number"`
	DisplayNumber string          `json:"display_number"`
	ParentOrderID *int            `json:"parent_order_id,omitempty"`
	SubNumber     *int            `json:"sub_number,omitempty"`
	IsExtraWork   bool            `json:"is_extra_work"`
	CustomerID    int             `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`  // joined from customers
	CustomerEmail string          `json:"customer_email"` // joined from customers
	Title         string          `json:"title"`
	Terms         string          `json:"terms"`
	Status        OrderStatus     `json:"status"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	VatRate       decimal.Decimal `json:"vat_rate"`
	VatAmount     decimal.Decimal `json:"vat_amount"`
	Total         decimal.Decimal `json:"total"`
	SentAt        *time.Time      `json:"sent_at,omitempty"`
	AcceptedAt    *time.Time      `json:"accepted_at,omitempty"`
	CreatedBy     int             `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Lines         []OrderLine     `json:"lines,omitempty"`
}

// OrderLine is one priced line on an order. DiscountAmount and LineTotal are derived.
type OrderLine struct {
	ID              int             `json:"id"`
	OrderID         int             `json:"order_id"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	LineTotal       decimal.Decimal `json:"line_total"`
	SortOrder       int             `json:"sort_order"`
}

// LineInput is a line as supplied by a caller, before derived amounts are computed.
type LineInput struct {
	Description     string
	Quantity        decimal.Decimal
	Unit            string
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
}

// Invoice is a frozen snapshot of an accepted order. Amounts and lines are never
// recomputed from the source order after creation.
type Invoice struct {
	ID              int             `json:"id"`
	InvoiceNumber   int64           `json:"invoice_number"`
	OrderID         int             `json:"order_id"`
	CustomerID      int             `json:"customer_id"`
	FullOrderNumber string          `json:"full_order_number"`
	Status          InvoiceStatus   `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	VatRate         decimal.Decimal `json:"vat_rate"`
	VatAmount       decimal.Decimal `json:"vat_amount"`
	Total           decimal.Decimal `json:"total"`
	DueDate         time.Time       `json:"due_date"`
	SentAt          *time.Time      `json:"sent_at,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	CreatedBy       int             `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	Lines           []InvoiceLine   `json:"lines,omitempty"`
}

// InvoiceLine is a deep copy of an OrderLine taken when the invoice was created.
type InvoiceLine struct {
	ID              int             `json:"id"`
	InvoiceID       int             `json:"invoice_id"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	LineTotal       decimal.Decimal `json:"line_total"`
	SortOrder       int             `json:"sort_order"`
}

// Expense is a cost booked against a main or extra-work order.
type Expense struct {
	ID          int             `json:"id"`
	OrderID     int             `json:"order_id"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate time.Time       `json:"expense_date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	CreatedBy   int             `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Workspace is the detail view of one order: the order itself, its extra work,
// the invoice (if any), expenses across the hierarchy and the financial rollup.
type Workspace struct {
	Order           *Order      `json:"order"`
	Lines           []OrderLine `json:"lines"`
	ExtraWorkOrders []Order     `json:"extra_work_orders"`
	Invoice         *Invoice    `json:"invoice,omitempty"`
	Expenses        []Expense   `json:"expenses"`
	Financials      Financials  `json:"financials"`
}

// OrderSummary is a list row: the order plus its quick aggregate figures.
type OrderSummary struct {
	Order
	ExtraWorkCount int        `json:"extra_work_count"`
	HasInvoice     bool       `json:"has_invoice"`
	Financials     Financials `json:"financials"`
}

// OrderFilter narrows ListOrders. Zero values mean "no filter".
type OrderFilter struct {
	Status        OrderStatus
	CustomerID    int
	IncludeExtras bool // list extra-work orders as separate rows too
}
