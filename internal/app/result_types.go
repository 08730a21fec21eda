package app

import (
	"ops-portal/internal/audit"
	"ops-portal/internal/core"
)

// CustomerResult is returned by customer operations.
type CustomerResult struct {
	Customer *core.Customer
}

// CustomerListResult is returned by ListCustomers.
type CustomerListResult struct {
	Customers []core.Customer
}

// OrderResult is returned by order lifecycle operations.
type OrderResult struct {
	Order *core.Order
}

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Orders []core.OrderSummary
}

// WorkspaceResult is returned by GetWorkspace.
type WorkspaceResult struct {
	Workspace *core.Workspace
}

// TimelineResult is returned by GetTimeline.
type TimelineResult struct {
	OrderID       int
	DisplayNumber string
	Activities    []audit.Activity
}

// InvoiceResult is returned by invoice operations.
type InvoiceResult struct {
	Invoice *core.Invoice
}

// InvoiceListResult is returned by ListInvoices.
type InvoiceListResult struct {
	Invoices []core.Invoice
}

// ExpenseResult is returned by RecordExpense.
type ExpenseResult struct {
	Expense *core.Expense
}

// ExpenseListResult is returned by ListExpenses.
type ExpenseListResult struct {
	Expenses []core.Expense
	Total    string // sum of Amount, fixed to 2 decimals
}

// UserSession is returned by AuthenticateUser.
type UserSession struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UserResult is returned by GetUser and CreateUser.
type UserResult struct {
	UserID   int
	Username string
	Email    string
	Role     string
}
