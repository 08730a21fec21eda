package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ops-portal/internal/audit"
	"ops-portal/internal/core"
)

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) CreateMainOrder(ctx context.Context, in core.OrderInput) (*core.Order, error) {
	args := m.Called(ctx, in)
	return orderArg(args)
}

func (m *mockOrderService) CreateExtraWork(ctx context.Context, parentID int, in core.OrderInput) (*core.Order, error) {
	args := m.Called(ctx, parentID, in)
	return orderArg(args)
}

func (m *mockOrderService) UpdateOrder(ctx context.Context, orderID int, upd core.OrderUpdate) (*core.Order, error) {
	args := m.Called(ctx, orderID, upd)
	return orderArg(args)
}

func (m *mockOrderService) DeleteOrder(ctx context.Context, orderID, actorID int) error {
	return m.Called(ctx, orderID, actorID).Error(0)
}

func (m *mockOrderService) SendOrder(ctx context.Context, orderID, actorID int) (*core.Order, error) {
	return orderArg(m.Called(ctx, orderID, actorID))
}

func (m *mockOrderService) AcceptOrder(ctx context.Context, orderID, actorID int) (*core.Order, error) {
	return orderArg(m.Called(ctx, orderID, actorID))
}

func (m *mockOrderService) RejectOrder(ctx context.Context, orderID, actorID int) (*core.Order, error) {
	return orderArg(m.Called(ctx, orderID, actorID))
}

func (m *mockOrderService) RevertOrder(ctx context.Context, orderID, actorID int) (*core.Order, error) {
	return orderArg(m.Called(ctx, orderID, actorID))
}

func (m *mockOrderService) GetOrder(ctx context.Context, orderID int) (*core.Order, error) {
	return orderArg(m.Called(ctx, orderID))
}

func (m *mockOrderService) GetOrderByNumber(ctx context.Context, display string) (*core.Order, error) {
	return orderArg(m.Called(ctx, display))
}

func (m *mockOrderService) ListOrders(ctx context.Context, filter core.OrderFilter) ([]core.OrderSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]core.OrderSummary), args.Error(1)
}

func (m *mockOrderService) GetOrderWorkspace(ctx context.Context, orderID int) (*core.Workspace, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Workspace), args.Error(1)
}

func orderArg(args mock.Arguments) (*core.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Order), args.Error(1)
}

type mockInvoiceService struct {
	mock.Mock
}

func (m *mockInvoiceService) CreateInvoiceFromOrder(ctx context.Context, orderID int, dueDate *time.Time, actorID int) (*core.Invoice, error) {
	return invoiceArg(m.Called(ctx, orderID, dueDate, actorID))
}

func (m *mockInvoiceService) GetInvoice(ctx context.Context, invoiceID int) (*core.Invoice, error) {
	return invoiceArg(m.Called(ctx, invoiceID))
}

func (m *mockInvoiceService) ListInvoices(ctx context.Context, filter core.InvoiceFilter) ([]core.Invoice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]core.Invoice), args.Error(1)
}

func (m *mockInvoiceService) MarkInvoiceSent(ctx context.Context, invoiceID, actorID int) (*core.Invoice, error) {
	return invoiceArg(m.Called(ctx, invoiceID, actorID))
}

func (m *mockInvoiceService) MarkInvoicePaid(ctx context.Context, invoiceID, actorID int) (*core.Invoice, error) {
	return invoiceArg(m.Called(ctx, invoiceID, actorID))
}

func (m *mockInvoiceService) DeleteInvoice(ctx context.Context, invoiceID, actorID int) error {
	return m.Called(ctx, invoiceID, actorID).Error(0)
}

func invoiceArg(args mock.Arguments) (*core.Invoice, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Invoice), args.Error(1)
}

type mockExpenseService struct {
	mock.Mock
}

func (m *mockExpenseService) RecordExpense(ctx context.Context, in core.ExpenseInput) (*core.Expense, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Expense), args.Error(1)
}

func (m *mockExpenseService) ListExpenses(ctx context.Context, orderID int) ([]core.Expense, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]core.Expense), args.Error(1)
}

func (m *mockExpenseService) DeleteExpense(ctx context.Context, expenseID, actorID int) error {
	return m.Called(ctx, expenseID, actorID).Error(0)
}

type stubTimeline []audit.Activity

func (s stubTimeline) List(_ context.Context, orderID int) ([]audit.Activity, error) {
	var out []audit.Activity
	for _, a := range s {
		if a.OrderID == orderID {
			out = append(out, a)
		}
	}
	return out, nil
}

func newTestService(orders *mockOrderService, invoices *mockInvoiceService, expenses *mockExpenseService, timeline TimelineReader) ApplicationService {
	return NewAppService(nil, orders, invoices, expenses, nil, timeline)
}

func TestResolveOrder(t *testing.T) {
	ctx := context.Background()
	orders := &mockOrderService{}
	svc := newTestService(orders, nil, nil, nil)

	orders.On("GetOrder", ctx, 7).Return(&core.Order{ID: 7}, nil).Once()
	orders.On("GetOrderByNumber", ctx, "0042").Return(&core.Order{ID: 42}, nil).Twice()
	orders.On("GetOrderByNumber", ctx, "0042-03").Return(&core.Order{ID: 43}, nil).Once()

	res, err := svc.GetOrder(ctx, " 7 ")
	require.NoError(t, err)
	assert.Equal(t, 7, res.Order.ID)

	res, err = svc.GetOrder(ctx, "#0042")
	require.NoError(t, err)
	assert.Equal(t, 42, res.Order.ID)

	// The bare zero-padded display number is not read as row id 42.
	res, err = svc.GetOrder(ctx, "0042")
	require.NoError(t, err)
	assert.Equal(t, 42, res.Order.ID)

	res, err = svc.GetOrder(ctx, "0042-03")
	require.NoError(t, err)
	assert.Equal(t, 43, res.Order.ID)

	_, err = svc.GetOrder(ctx, "abc")
	assert.True(t, core.IsValidation(err))
	_, err = svc.GetOrder(ctx, "0")
	assert.True(t, core.IsValidation(err))

	orders.AssertExpectations(t)
}

func TestAcceptOrder_ResolvesThenTransitions(t *testing.T) {
	ctx := context.Background()
	orders := &mockOrderService{}
	svc := newTestService(orders, nil, nil, nil)

	orders.On("GetOrderByNumber", ctx, "0001").Return(&core.Order{ID: 1, Status: core.StatusSent}, nil)
	orders.On("AcceptOrder", ctx, 1, 9).Return(&core.Order{ID: 1, Status: core.StatusAccepted}, nil)

	res, err := svc.AcceptOrder(ctx, "#0001", 9)
	require.NoError(t, err)
	assert.Equal(t, core.StatusAccepted, res.Order.Status)
	orders.AssertExpectations(t)
}

func TestRevertOrder_PropagatesConflict(t *testing.T) {
	ctx := context.Background()
	orders := &mockOrderService{}
	svc := newTestService(orders, nil, nil, nil)

	orders.On("GetOrder", ctx, 3).Return(&core.Order{ID: 3}, nil)
	orders.On("RevertOrder", ctx, 3, 1).Return(nil, &core.ConflictError{Message: "order 0003 is already invoiced"})

	_, err := svc.RevertOrder(ctx, "3", 1)
	require.Error(t, err)
	assert.True(t, core.IsConflict(err))
}

func TestCreateInvoice_ParsesDueDate(t *testing.T) {
	ctx := context.Background()
	orders := &mockOrderService{}
	invoices := &mockInvoiceService{}
	svc := newTestService(orders, invoices, nil, nil)

	_, err := svc.CreateInvoice(ctx, "5", "31/01/2030", 1)
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
	invoices.AssertNotCalled(t, "CreateInvoiceFromOrder")

	due := time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC)
	orders.On("GetOrder", ctx, 5).Return(&core.Order{ID: 5}, nil)
	invoices.On("CreateInvoiceFromOrder", ctx, 5, &due, 1).Return(&core.Invoice{ID: 1, InvoiceNumber: 5000}, nil)
	invoices.On("CreateInvoiceFromOrder", ctx, 5, (*time.Time)(nil), 1).Return(&core.Invoice{ID: 2, InvoiceNumber: 5001}, nil)

	res, err := svc.CreateInvoice(ctx, "5", "2030-01-31", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), res.Invoice.InvoiceNumber)

	res, err = svc.CreateInvoice(ctx, "5", "", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5001), res.Invoice.InvoiceNumber)
}

func TestListExpenses_Total(t *testing.T) {
	ctx := context.Background()
	orders := &mockOrderService{}
	expenses := &mockExpenseService{}
	svc := newTestService(orders, nil, expenses, nil)

	orders.On("GetOrder", ctx, 2).Return(&core.Order{ID: 2}, nil)
	expenses.On("ListExpenses", ctx, 2).Return([]core.Expense{
		{Amount: decimal.RequireFromString("10.10")},
		{Amount: decimal.RequireFromString("5")},
	}, nil)

	res, err := svc.ListExpenses(ctx, "2")
	require.NoError(t, err)
	assert.Len(t, res.Expenses, 2)
	assert.Equal(t, "15.10", res.Total)
}

func TestRecordExpense_MapsRequest(t *testing.T) {
	ctx := context.Background()
	orders := &mockOrderService{}
	expenses := &mockExpenseService{}
	svc := newTestService(orders, nil, expenses, nil)

	orders.On("GetOrderByNumber", ctx, "0002-01").Return(&core.Order{ID: 11}, nil)
	expenses.On("RecordExpense", ctx, mock.MatchedBy(func(in core.ExpenseInput) bool {
		return in.OrderID == 11 && in.Amount.Equal(decimal.NewFromInt(40)) &&
			in.ExpenseDate != nil && in.ExpenseDate.Day() == 2 && in.Category == "fuel"
	})).Return(&core.Expense{ID: 1, OrderID: 11}, nil)

	res, err := svc.RecordExpense(ctx, RecordExpenseRequest{
		OrderRef:    "0002-01",
		Amount:      decimal.NewFromInt(40),
		ExpenseDate: "2026-05-02",
		Category:    "fuel",
	})
	require.NoError(t, err)
	assert.Equal(t, 11, res.Expense.OrderID)
	expenses.AssertExpectations(t)
}

func TestListOrders_NormalizesStatus(t *testing.T) {
	ctx := context.Background()
	orders := &mockOrderService{}
	svc := newTestService(orders, nil, nil, nil)

	orders.On("ListOrders", ctx, core.OrderFilter{Status: core.StatusAccepted, IncludeExtras: true}).
		Return([]core.OrderSummary{{Order: core.Order{ID: 1}}}, nil)

	res, err := svc.ListOrders(ctx, ListOrdersRequest{Status: " Accepted ", IncludeExtras: true})
	require.NoError(t, err)
	assert.Len(t, res.Orders, 1)
}

func TestGetTimeline(t *testing.T) {
	ctx := context.Background()
	orders := &mockOrderService{}
	timeline := stubTimeline{
		audit.New(4, audit.TypeOrderCreated, "created", 1),
		audit.New(5, audit.TypeOrderCreated, "other", 1),
		audit.New(4, audit.TypeOrderAccepted, "accepted", 1),
	}
	svc := newTestService(orders, nil, nil, timeline)

	orders.On("GetOrder", ctx, 4).Return(&core.Order{ID: 4, DisplayNumber: "0004"}, nil)

	res, err := svc.GetTimeline(ctx, "4")
	require.NoError(t, err)
	assert.Equal(t, "0004", res.DisplayNumber)
	require.Len(t, res.Activities, 2)
	assert.Equal(t, audit.TypeOrderAccepted, res.Activities[1].Type)
}

func TestUpdateOrder_KeepsLinesWhenNil(t *testing.T) {
	ctx := context.Background()
	orders := &mockOrderService{}
	svc := newTestService(orders, nil, nil, nil)

	title := "New"
	orders.On("GetOrder", ctx, 1).Return(&core.Order{ID: 1}, nil)
	orders.On("UpdateOrder", ctx, 1, mock.MatchedBy(func(upd core.OrderUpdate) bool {
		return upd.Lines == nil && upd.Title != nil && *upd.Title == "New"
	})).Return(&core.Order{ID: 1, Title: "New"}, nil)

	res, err := svc.UpdateOrder(ctx, "1", UpdateOrderRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New", res.Order.Title)
}
