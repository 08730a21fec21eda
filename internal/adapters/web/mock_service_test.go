package web

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ops-portal/internal/app"
)

// mockService is a testify mock of app.ApplicationService.
type mockService struct {
	mock.Mock
}

var _ app.ApplicationService = (*mockService)(nil)

func ret[T any](args mock.Arguments) (*T, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *mockService) CreateCustomer(ctx context.Context, req app.CreateCustomerRequest) (*app.CustomerResult, error) {
	return ret[app.CustomerResult](m.Called(ctx, req))
}

func (m *mockService) GetCustomer(ctx context.Context, id int) (*app.CustomerResult, error) {
	return ret[app.CustomerResult](m.Called(ctx, id))
}

func (m *mockService) ListCustomers(ctx context.Context) (*app.CustomerListResult, error) {
	return ret[app.CustomerListResult](m.Called(ctx))
}

func (m *mockService) CreateOrder(ctx context.Context, req app.CreateOrderRequest) (*app.OrderResult, error) {
	return ret[app.OrderResult](m.Called(ctx, req))
}

func (m *mockService) CreateExtraWork(ctx context.Context, parentRef string, req app.CreateOrderRequest) (*app.OrderResult, error) {
	return ret[app.OrderResult](m.Called(ctx, parentRef, req))
}

func (m *mockService) UpdateOrder(ctx context.Context, ref string, req app.UpdateOrderRequest) (*app.OrderResult, error) {
	return ret[app.OrderResult](m.Called(ctx, ref, req))
}

func (m *mockService) DeleteOrder(ctx context.Context, ref string, actorID int) error {
	return m.Called(ctx, ref, actorID).Error(0)
}

func (m *mockService) GetOrder(ctx context.Context, ref string) (*app.OrderResult, error) {
	return ret[app.OrderResult](m.Called(ctx, ref))
}

func (m *mockService) ListOrders(ctx context.Context, req app.ListOrdersRequest) (*app.OrderListResult, error) {
	return ret[app.OrderListResult](m.Called(ctx, req))
}

func (m *mockService) SendOrder(ctx context.Context, ref string, actorID int) (*app.OrderResult, error) {
	return ret[app.OrderResult](m.Called(ctx, ref, actorID))
}

func (m *mockService) AcceptOrder(ctx context.Context, ref string, actorID int) (*app.OrderResult, error) {
	return ret[app.OrderResult](m.Called(ctx, ref, actorID))
}

func (m *mockService) RejectOrder(ctx context.Context, ref string, actorID int) (*app.OrderResult, error) {
	return ret[app.OrderResult](m.Called(ctx, ref, actorID))
}

func (m *mockService) RevertOrder(ctx context.Context, ref string, actorID int) (*app.OrderResult, error) {
	return ret[app.OrderResult](m.Called(ctx, ref, actorID))
}

func (m *mockService) GetWorkspace(ctx context.Context, ref string) (*app.WorkspaceResult, error) {
	return ret[app.WorkspaceResult](m.Called(ctx, ref))
}

func (m *mockService) GetTimeline(ctx context.Context, ref string) (*app.TimelineResult, error) {
	return ret[app.TimelineResult](m.Called(ctx, ref))
}

func (m *mockService) CreateInvoice(ctx context.Context, ref, dueDate string, actorID int) (*app.InvoiceResult, error) {
	return ret[app.InvoiceResult](m.Called(ctx, ref, dueDate, actorID))
}

func (m *mockService) GetInvoice(ctx context.Context, id int) (*app.InvoiceResult, error) {
	return ret[app.InvoiceResult](m.Called(ctx, id))
}

func (m *mockService) ListInvoices(ctx context.Context, status string) (*app.InvoiceListResult, error) {
	return ret[app.InvoiceListResult](m.Called(ctx, status))
}

func (m *mockService) MarkInvoiceSent(ctx context.Context, id, actorID int) (*app.InvoiceResult, error) {
	return ret[app.InvoiceResult](m.Called(ctx, id, actorID))
}

func (m *mockService) MarkInvoicePaid(ctx context.Context, id, actorID int) (*app.InvoiceResult, error) {
	return ret[app.InvoiceResult](m.Called(ctx, id, actorID))
}

func (m *mockService) DeleteInvoice(ctx context.Context, id, actorID int) error {
	return m.Called(ctx, id, actorID).Error(0)
}

func (m *mockService) RecordExpense(ctx context.Context, req app.RecordExpenseRequest) (*app.ExpenseResult, error) {
	return ret[app.ExpenseResult](m.Called(ctx, req))
}

func (m *mockService) ListExpenses(ctx context.Context, ref string) (*app.ExpenseListResult, error) {
	return ret[app.ExpenseListResult](m.Called(ctx, ref))
}

func (m *mockService) DeleteExpense(ctx context.Context, id, actorID int) error {
	return m.Called(ctx, id, actorID).Error(0)
}

func (m *mockService) AuthenticateUser(ctx context.Context, username, password string) (*app.UserSession, error) {
	return ret[app.UserSession](m.Called(ctx, username, password))
}

func (m *mockService) CreateUser(ctx context.Context, req app.CreateUserRequest) (*app.UserResult, error) {
	return ret[app.UserResult](m.Called(ctx, req))
}

func (m *mockService) GetUser(ctx context.Context, userID int) (*app.UserResult, error) {
	return ret[app.UserResult](m.Called(ctx, userID))
}
