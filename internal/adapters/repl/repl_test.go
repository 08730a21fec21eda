package repl

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ops-portal/internal/app"
	"ops-portal/internal/core"
)

// fakeService implements the calls the console tests exercise. Any other method
// panics through the nil embedded interface.
type fakeService struct {
	app.ApplicationService

	created     *app.CreateOrderRequest
	extraParent string
	accepted    []string
	invoiceDue  string
	expense     *app.RecordExpenseRequest
	failAccept  error
}

func (f *fakeService) CreateOrder(_ context.Context, req app.CreateOrderRequest) (*app.OrderResult, error) {
	f.created = &req
	return &app.OrderResult{Order: &core.Order{ID: 1, DisplayNumber: "0001", Status: core.StatusDraft, Title: req.Title}}, nil
}

func (f *fakeService) CreateExtraWork(_ context.Context, parentRef string, req app.CreateOrderRequest) (*app.OrderResult, error) {
	f.extraParent = parentRef
	f.created = &req
	return &app.OrderResult{Order: &core.Order{ID: 2, DisplayNumber: "0001-01", Status: core.StatusAccepted, IsExtraWork: true}}, nil
}

func (f *fakeService) AcceptOrder(_ context.Context, ref string, _ int) (*app.OrderResult, error) {
	if f.failAccept != nil {
		return nil, f.failAccept
	}
	f.accepted = append(f.accepted, ref)
	return &app.OrderResult{Order: &core.Order{DisplayNumber: "0001", Status: core.StatusAccepted}}, nil
}

func (f *fakeService) CreateInvoice(_ context.Context, _, dueDate string, _ int) (*app.InvoiceResult, error) {
	f.invoiceDue = dueDate
	return &app.InvoiceResult{Invoice: &core.Invoice{
		InvoiceNumber:   5000,
		FullOrderNumber: "0001",
		DueDate:         time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC),
		Total:           decimal.RequireFromString("306.25"),
	}}, nil
}

func (f *fakeService) RecordExpense(_ context.Context, req app.RecordExpenseRequest) (*app.ExpenseResult, error) {
	f.expense = &req
	return &app.ExpenseResult{Expense: &core.Expense{Amount: req.Amount}}, nil
}

func (f *fakeService) ListOrders(_ context.Context, req app.ListOrdersRequest) (*app.OrderListResult, error) {
	return &app.OrderListResult{Orders: []core.OrderSummary{{
		Order:          core.Order{ID: 1, DisplayNumber: "0001", CustomerName: "Acme", Status: core.OrderStatus(req.Status)},
		ExtraWorkCount: 1,
		HasInvoice:     true,
		Financials: core.Financials{
			Revenue:  decimal.RequireFromString("1556.25"),
			Expenses: decimal.RequireFromString("500"),
			Profit:   decimal.RequireFromString("1056.25"),
		},
	}}}, nil
}

func TestExecute_Accept(t *testing.T) {
	svc := &fakeService{}
	var out bytes.Buffer
	c := NewConsole(svc, nil, &out, 3)

	require.NoError(t, c.Execute(context.Background(), []string{"accept", "#0001"}))
	assert.Equal(t, []string{"#0001"}, svc.accepted)
	assert.Contains(t, out.String(), "Order #0001 is now ACCEPTED.")
}

func TestExecute_PropagatesServiceError(t *testing.T) {
	svc := &fakeService{failAccept: &core.StateError{Action: "accept", Status: core.StatusRejected}}
	c := NewConsole(svc, nil, &bytes.Buffer{}, 0)

	err := c.Execute(context.Background(), []string{"accept", "1"})
	require.Error(t, err)
	assert.True(t, core.IsState(err))
}

func TestExecute_UsageAndUnknown(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&fakeService{}, nil, &out, 0)

	require.NoError(t, c.Execute(context.Background(), []string{"accept"}))
	assert.Contains(t, out.String(), "Usage: /accept <order-ref>")

	require.NoError(t, c.Execute(context.Background(), []string{"frobnicate"}))
	assert.Contains(t, out.String(), "Unknown command: /frobnicate")

	assert.ErrorIs(t, c.Execute(context.Background(), []string{"quit"}), ErrExit)
}

func TestExecute_InvoiceWithDueDate(t *testing.T) {
	svc := &fakeService{}
	var out bytes.Buffer
	c := NewConsole(svc, nil, &out, 0)

	require.NoError(t, c.Execute(context.Background(), []string{"invoice", "1", "2030-01-31"}))
	assert.Equal(t, "2030-01-31", svc.invoiceDue)
	assert.Contains(t, out.String(), "Invoice 5000 created for order 0001, due 2030-01-31.")
}

func TestExecute_Expense(t *testing.T) {
	svc := &fakeService{}
	var out bytes.Buffer
	c := NewConsole(svc, nil, &out, 9)

	require.NoError(t, c.Execute(context.Background(), []string{"expense", "0001-01", "45.5", "fuel", "van", "trip"}))
	require.NotNil(t, svc.expense)
	assert.Equal(t, "0001-01", svc.expense.OrderRef)
	assert.True(t, svc.expense.Amount.Equal(decimal.RequireFromString("45.5")))
	assert.Equal(t, "fuel", svc.expense.Category)
	assert.Equal(t, "van trip", svc.expense.Description)
	assert.Equal(t, 9, svc.expense.ActorID)
	assert.Contains(t, out.String(), "Expense of 45.50 recorded")

	require.NoError(t, c.Execute(context.Background(), []string{"expense", "1", "abc"}))
	assert.Contains(t, out.String(), "Invalid amount: abc")
}

func TestExecute_Orders(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&fakeService{}, nil, &out, 0)

	require.NoError(t, c.Execute(context.Background(), []string{"orders", "accepted", "--all"}))
	s := out.String()
	assert.Contains(t, s, "0001")
	assert.Contains(t, s, "1556.25")
	assert.Contains(t, s, "1056.25")
	assert.Contains(t, s, "ACCEPTED")
}

func TestParseLine(t *testing.T) {
	line, err := parseLine("2 122.50 Roof tiles")
	require.NoError(t, err)
	assert.True(t, line.Quantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, line.UnitPrice.Equal(decimal.RequireFromString("122.50")))
	assert.True(t, line.DiscountPercent.IsZero())
	assert.Equal(t, "Roof tiles", line.Description)

	line, err = parseLine("1 800 10% Labour")
	require.NoError(t, err)
	assert.True(t, line.DiscountPercent.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "Labour", line.Description)

	_, err = parseLine("2 abc Tiles")
	assert.Error(t, err)
	_, err = parseLine("2 10")
	assert.Error(t, err)
}

func TestNewOrderWizard(t *testing.T) {
	svc := &fakeService{}
	input := strings.Join([]string{
		"Roof repair",    // title
		"Net 14",         // terms
		"2 122.50 Tiles", // line 1
		"bad line",       // rejected, re-prompted
		"done",           // end of lines
		"12.5",           // VAT
	}, "\n") + "\n"
	var out bytes.Buffer
	c := NewConsole(svc, bufio.NewReader(strings.NewReader(input)), &out, 4)

	require.NoError(t, c.Execute(context.Background(), []string{"new-order", "7"}))
	require.NotNil(t, svc.created)
	assert.Equal(t, 7, svc.created.CustomerID)
	assert.Equal(t, "Roof repair", svc.created.Title)
	assert.Equal(t, "Net 14", svc.created.Terms)
	assert.Len(t, svc.created.Lines, 1)
	require.NotNil(t, svc.created.VatRate)
	assert.True(t, svc.created.VatRate.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, 4, svc.created.ActorID)
	assert.Contains(t, out.String(), "Order created (#0001, Status: DRAFT)")
}

func TestExtraWorkWizard(t *testing.T) {
	svc := &fakeService{}
	input := "Extra insulation\n\n1 300 Insulation\ndone\n"
	var out bytes.Buffer
	c := NewConsole(svc, bufio.NewReader(strings.NewReader(input)), &out, 0)

	require.NoError(t, c.Execute(context.Background(), []string{"extra", "#0001"}))
	assert.Equal(t, "#0001", svc.extraParent)
	assert.Nil(t, svc.created.VatRate)
	assert.Contains(t, out.String(), "Order created (#0001-01, Status: ACCEPTED)")
}

func TestNewOrderWizard_Cancel(t *testing.T) {
	svc := &fakeService{}
	var out bytes.Buffer
	c := NewConsole(svc, bufio.NewReader(strings.NewReader("T\n\ncancel\n")), &out, 0)

	require.NoError(t, c.Execute(context.Background(), []string{"new-order", "1"}))
	assert.Nil(t, svc.created)
	assert.Contains(t, out.String(), "Order creation cancelled.")
}

func TestWizard_NeedsInput(t *testing.T) {
	c := NewConsole(&fakeService{}, nil, &bytes.Buffer{}, 0)
	assert.ErrorIs(t, c.Execute(context.Background(), []string{"new-order", "1"}), errNoInput)
}

func TestRun_ExitsOnQuitAndEOF(t *testing.T) {
	svc := &fakeService{}
	var out bytes.Buffer
	Run(context.Background(), svc, bufio.NewReader(strings.NewReader("/accept 1\n/quit\n/accept 2\n")), &out, 0)
	assert.Equal(t, []string{"1"}, svc.accepted)
	assert.Contains(t, out.String(), "Goodbye!")

	out.Reset()
	Run(context.Background(), svc, bufio.NewReader(strings.NewReader("accept 3")), &out, 0)
	assert.Equal(t, []string{"1", "3"}, svc.accepted)
}
