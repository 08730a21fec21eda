package app

import (
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest is the input for registering a customer.
type CreateCustomerRequest struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// CreateOrderRequest is the input for a main order or an extra-work order.
type CreateOrderRequest struct {
	CustomerID int // ignored for extra work
	Title      string
	Terms      string
	VatRate    *decimal.Decimal // nil means default (main) or the parent's rate (extra work)
	Lines      []OrderLineInput
	ActorID    int
}

// OrderLineInput is a single line within a CreateOrderRequest or UpdateOrderRequest.
type OrderLineInput struct {
	Description     string
	Quantity        decimal.Decimal
	Unit            string
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
}

// UpdateOrderRequest carries the fields to change. Nil fields are left as they are.
type UpdateOrderRequest struct {
	CustomerID *int
	Title      *string
	Terms      *string
	VatRate    *decimal.Decimal
	Lines      []OrderLineInput // nil keeps the current lines
	ActorID    int
}

// ListOrdersRequest filters ListOrders. Zero values mean "all".
type ListOrdersRequest struct {
	Status        string
	CustomerID    int
	IncludeExtras bool
}

// RecordExpenseRequest is the input for booking a cost on an order.
type RecordExpenseRequest struct {
	OrderRef    string
	Amount      decimal.Decimal
	ExpenseDate string // YYYY-MM-DD; empty means today
	Category    string
	Description string
	ActorID     int
}

// CreateUserRequest is the input for registering a portal login.
type CreateUserRequest struct {
	Username string
	Email    string
	Password string
	Role     string
}
