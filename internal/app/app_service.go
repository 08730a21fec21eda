package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ops-portal/internal/audit"
	"ops-portal/internal/core"
)

// TimelineReader reads back the activities recorded for an order.
type TimelineReader interface {
	List(ctx context.Context, orderID int) ([]audit.Activity, error)
}

type appService struct {
	customers core.CustomerService
	orders    core.OrderService
	invoices  core.InvoiceService
	expenses  core.ExpenseService
	users     core.UserService
	timeline  TimelineReader
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	customers core.CustomerService,
	orders core.OrderService,
	invoices core.InvoiceService,
	expenses core.ExpenseService,
	users core.UserService,
	timeline TimelineReader,
) ApplicationService {
	return &appService{
		customers: customers,
		orders:    orders,
		invoices:  invoices,
		expenses:  expenses,
		users:     users,
		timeline:  timeline,
	}
}

// ── Customers ─────────────────────────────────────────────────────────────────

func (s *appService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*CustomerResult, error) {
	c, err := s.customers.CreateCustomer(ctx, core.CustomerInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return nil, err
	}
	return &CustomerResult{Customer: c}, nil
}

func (s *appService) GetCustomer(ctx context.Context, id int) (*CustomerResult, error) {
	c, err := s.customers.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CustomerResult{Customer: c}, nil
}

func (s *appService) ListCustomers(ctx context.Context) (*CustomerListResult, error) {
	customers, err := s.customers.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	return &CustomerListResult{Customers: customers}, nil
}

// ── Orders ────────────────────────────────────────────────────────────────────

func (s *appService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	order, err := s.orders.CreateMainOrder(ctx, toOrderInput(req))
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) CreateExtraWork(ctx context.Context, parentRef string, req CreateOrderRequest) (*OrderResult, error) {
	parent, err := s.resolveOrder(ctx, parentRef)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.CreateExtraWork(ctx, parent.ID, toOrderInput(req))
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) UpdateOrder(ctx context.Context, ref string, req UpdateOrderRequest) (*OrderResult, error) {
	order, err := s.resolveOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	upd := core.OrderUpdate{
		CustomerID: req.CustomerID,
		Title:      req.Title,
		Terms:      req.Terms,
		VatRate:    req.VatRate,
		ActorID:    req.ActorID,
	}
	if req.Lines != nil {
		upd.Lines = toLineInputs(req.Lines)
	}
	order, err = s.orders.UpdateOrder(ctx, order.ID, upd)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) DeleteOrder(ctx context.Context, ref string, actorID int) error {
	order, err := s.resolveOrder(ctx, ref)
	if err != nil {
		return err
	}
	return s.orders.DeleteOrder(ctx, order.ID, actorID)
}

func (s *appService) GetOrder(ctx context.Context, ref string) (*OrderResult, error) {
	order, err := s.resolveOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) ListOrders(ctx context.Context, req ListOrdersRequest) (*OrderListResult, error) {
	orders, err := s.orders.ListOrders(ctx, core.OrderFilter{
		Status:        core.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status))),
		CustomerID:    req.CustomerID,
		IncludeExtras: req.IncludeExtras,
	})
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: orders}, nil
}

func (s *appService) SendOrder(ctx context.Context, ref string, actorID int) (*OrderResult, error) {
	return s.transition(ctx, ref, actorID, s.orders.SendOrder)
}

func (s *appService) AcceptOrder(ctx context.Context, ref string, actorID int) (*OrderResult, error) {
	return s.transition(ctx, ref, actorID, s.orders.AcceptOrder)
}

func (s *appService) RejectOrder(ctx context.Context, ref string, actorID int) (*OrderResult, error) {
	return s.transition(ctx, ref, actorID, s.orders.RejectOrder)
}

func (s *appService) RevertOrder(ctx context.Context, ref string, actorID int) (*OrderResult, error) {
	return s.transition(ctx, ref, actorID, s.orders.RevertOrder)
}

type transitionFunc func(ctx context.Context, orderID, actorID int) (*core.Order, error)

func (s *appService) transition(ctx context.Context, ref string, actorID int, fn transitionFunc) (*OrderResult, error) {
	order, err := s.resolveOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	order, err = fn(ctx, order.ID, actorID)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) GetWorkspace(ctx context.Context, ref string) (*WorkspaceResult, error) {
	order, err := s.resolveOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	ws, err := s.orders.GetOrderWorkspace(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &WorkspaceResult{Workspace: ws}, nil
}

func (s *appService) GetTimeline(ctx context.Context, ref string) (*TimelineResult, error) {
	order, err := s.resolveOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	activities, err := s.timeline.List(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &TimelineResult{
		OrderID:       order.ID,
		DisplayNumber: order.DisplayNumber,
		Activities:    activities,
	}, nil
}

// ── Invoices ──────────────────────────────────────────────────────────────────

func (s *appService) CreateInvoice(ctx context.Context, ref, dueDate string, actorID int) (*InvoiceResult, error) {
	due, err := parseDate("due_date", dueDate)
	if err != nil {
		return nil, err
	}
	order, err := s.resolveOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	inv, err := s.invoices.CreateInvoiceFromOrder(ctx, order.ID, due, actorID)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv}, nil
}

func (s *appService) GetInvoice(ctx context.Context, id int) (*InvoiceResult, error) {
	inv, err := s.invoices.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv}, nil
}

func (s *appService) ListInvoices(ctx context.Context, status string) (*InvoiceListResult, error) {
	invoices, err := s.invoices.ListInvoices(ctx, core.InvoiceFilter{
		Status: core.InvoiceStatus(strings.ToLower(strings.TrimSpace(status))),
	})
	if err != nil {
		return nil, err
	}
	return &InvoiceListResult{Invoices: invoices}, nil
}

func (s *appService) MarkInvoiceSent(ctx context.Context, id, actorID int) (*InvoiceResult, error) {
	inv, err := s.invoices.MarkInvoiceSent(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv}, nil
}

func (s *appService) MarkInvoicePaid(ctx context.Context, id, actorID int) (*InvoiceResult, error) {
	inv, err := s.invoices.MarkInvoicePaid(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv}, nil
}

func (s *appService) DeleteInvoice(ctx context.Context, id, actorID int) error {
	return s.invoices.DeleteInvoice(ctx, id, actorID)
}

// ── Expenses ──────────────────────────────────────────────────────────────────

func (s *appService) RecordExpense(ctx context.Context, req RecordExpenseRequest) (*ExpenseResult, error) {
	date, err := parseDate("expense_date", req.ExpenseDate)
	if err != nil {
		return nil, err
	}
	order, err := s.resolveOrder(ctx, req.OrderRef)
	if err != nil {
		return nil, err
	}
	e, err := s.expenses.RecordExpense(ctx, core.ExpenseInput{
		OrderID:     order.ID,
		Amount:      req.Amount,
		ExpenseDate: date,
		Category:    req.Category,
		Description: req.Description,
		ActorID:     req.ActorID,
	})
	if err != nil {
		return nil, err
	}
	return &ExpenseResult{Expense: e}, nil
}

func (s *appService) ListExpenses(ctx context.Context, ref string) (*ExpenseListResult, error) {
	order, err := s.resolveOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListExpenses(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return &ExpenseListResult{Expenses: expenses, Total: total.StringFixed(2)}, nil
}

func (s *appService) DeleteExpense(ctx context.Context, id, actorID int) error {
	return s.expenses.DeleteExpense(ctx, id, actorID)
}

// ── Users ─────────────────────────────────────────────────────────────────────

func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	u, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return &UserSession{UserID: u.ID, Username: u.Username, Role: u.Role}, nil
}

func (s *appService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResult, error) {
	u, err := s.users.CreateUser(ctx, req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		return nil, err
	}
	return &UserResult{UserID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}, nil
}

func (s *appService) GetUser(ctx context.Context, userID int) (*UserResult, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserResult{UserID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}, nil
}

// ── private helpers ───────────────────────────────────────────────────────────

// resolveOrder looks up an order by numeric ID or display number. Display numbers are
// "#"-prefixed, zero-padded ("0042") or carry a sub-number ("0042-03").
func (s *appService) resolveOrder(ctx context.Context, ref string) (*core.Order, error) {
	ref = strings.TrimSpace(ref)
	if isDisplayRef(ref) {
		return s.orders.GetOrderByNumber(ctx, strings.TrimPrefix(ref, "#"))
	}
	id, err := strconv.Atoi(ref)
	if err != nil || id <= 0 {
		return nil, &core.ValidationError{Field: "order", Message: fmt.Sprintf("invalid order reference %q", ref)}
	}
	return s.orders.GetOrder(ctx, id)
}

func isDisplayRef(ref string) bool {
	if strings.HasPrefix(ref, "#") || strings.Contains(ref, "-") {
		return true
	}
	return len(ref) > 1 && ref[0] == '0'
}

// parseDate parses an optional YYYY-MM-DD value.
func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, &core.ValidationError{Field: field, Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", value)}
	}
	return &t, nil
}

func toOrderInput(req CreateOrderRequest) core.OrderInput {
	return core.OrderInput{
		CustomerID: req.CustomerID,
		Title:      req.Title,
		Terms:      req.Terms,
		VatRate:    req.VatRate,
		Lines:      toLineInputs(req.Lines),
		ActorID:    req.ActorID,
	}
}

func toLineInputs(lines []OrderLineInput) []core.LineInput {
	out := make([]core.LineInput, len(lines))
	for i, l := range lines {
		out[i] = core.LineInput{
			Description:     l.Description,
			Quantity:        l.Quantity,
			Unit:            l.Unit,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
		}
	}
	return out
}
