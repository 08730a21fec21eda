package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"ops-portal/internal/audit"
	"ops-portal/internal/db"
)

// OrderInput is the caller-supplied content of a new order.
type OrderInput struct {
	CustomerID int              // ignored for extra work, which inherits the parent's customer
	Title      string
	Terms      string           // extra work falls back to the parent's terms when empty
	VatRate    *decimal.Decimal // nil: service default, or the parent's rate for extra work
	Lines      []LineInput
	ActorID    int
}

// OrderUpdate replaces the editable fields of an order. Nil fields are left unchanged.
type OrderUpdate struct {
	CustomerID *int // rejected for extra work
	Title      *string
	Terms      *string
	VatRate    *decimal.Decimal
	Lines      []LineInput // nil keeps the current lines; non-nil replaces them all
	ActorID    int
}

// OrderService owns order identity, the order hierarchy and the status lifecycle.
type OrderService interface {
	// CreateMainOrder creates a draft main order with a fresh sequential number.
	CreateMainOrder(ctx context.Context, in OrderInput) (*Order, error)
	// CreateExtraWork creates an accepted extra-work order under parentID.
	CreateExtraWork(ctx context.Context, parentID int, in OrderInput) (*Order, error)
	UpdateOrder(ctx context.Context, orderID int, upd OrderUpdate) (*Order, error)
	DeleteOrder(ctx context.Context, orderID, actorID int) error

	SendOrder(ctx context.Context, orderID, actorID int) (*Order, error)
	AcceptOrder(ctx context.Context, orderID, actorID int) (*Order, error)
	RejectOrder(ctx context.Context, orderID, actorID int) (*Order, error)
	// RevertOrder returns an accepted or rejected order to draft. An accepted order
	// with a live invoice cannot be reverted.
	RevertOrder(ctx context.Context, orderID, actorID int) (*Order, error)

	GetOrder(ctx context.Context, orderID int) (*Order, error)
	// GetOrderByNumber looks an order up by display identifier, "0042" or "0042-03".
	GetOrderByNumber(ctx context.Context, display string) (*Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]OrderSummary, error)
	GetOrderWorkspace(ctx context.Context, orderID int) (*Workspace, error)
}

type orderService struct {
	pool           *pgxpool.Pool
	numbering      NumberingService
	timeline       audit.Appender
	defaultVatRate decimal.Decimal
}

func NewOrderService(pool *pgxpool.Pool, numbering NumberingService, timeline audit.Appender, defaultVatRate decimal.Decimal) OrderService {
	if timeline == nil {
		timeline = audit.Nop{}
	}
	return &orderService{
		pool:           pool,
		numbering:      numbering,
		timeline:       timeline,
		defaultVatRate: defaultVatRate,
	}
}

const orderSelect = `
	SELECT o.id, o.order_number, o.parent_order_id, o.sub_number, o.is_extra_work,
	       o.customer_id, c.name, c.email, o.title, o.terms, o.status,
	       o.subtotal, o.vat_rate, o.vat_amount, o.total, o.sent_at, o.accepted_at,
	       o.created_by, o.created_at, o.updated_at, COALESCE(p.order_number, '')
	FROM orders o
	JOIN customers c ON c.id = o.customer_id
	LEFT JOIN orders p ON p.id = o.parent_order_id
`

func orderScanTargets(o *Order, parentNumber *string) []any {
	return []any{
		&o.ID, &o.OrderNumber, &o.ParentOrderID, &o.SubNumber, &o.IsExtraWork,
		&o.CustomerID, &o.CustomerName, &o.CustomerEmail, &o.Title, &o.Terms, &o.Status,
		&o.Subtotal, &o.VatRate, &o.VatAmount, &o.Total, &o.SentAt, &o.AcceptedAt,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt, parentNumber,
	}
}

// fetchOrder loads an order header. With forUpdate the order row (not the customer
// or parent) is locked until the surrounding transaction ends.
func fetchOrder(ctx context.Context, q db.Querier, orderID int, forUpdate bool) (*Order, error) {
	query := orderSelect + " WHERE o.id = $1"
	if forUpdate {
		query += " FOR UPDATE OF o"
	}

	var o Order
	var parentNumber string
	if err := q.QueryRow(ctx, query, orderID).Scan(orderScanTargets(&o, &parentNumber)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "order", ID: orderID}
		}
		return nil, fmt.Errorf("failed to get order %d: %w", orderID, err)
	}
	o.DisplayNumber = ResolveDisplayNumber(&o, parentNumber)
	return &o, nil
}

func fetchOrderLines(ctx context.Context, q db.Querier, orderID int) ([]OrderLine, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, description, quantity, unit, unit_price,
		       discount_percent, discount_amount, line_total, sort_order
		FROM order_lines
		WHERE order_id = $1
		ORDER BY sort_order, id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	lines := []OrderLine{}
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.Description, &l.Quantity, &l.Unit, &l.UnitPrice,
			&l.DiscountPercent, &l.DiscountAmount, &l.LineTotal, &l.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func fetchExtraWork(ctx context.Context, q db.Querier, parentID int) ([]Order, error) {
	rows, err := q.Query(ctx, orderSelect+" WHERE o.parent_order_id = $1 ORDER BY o.sub_number", parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query extra work for order %d: %w", parentID, err)
	}
	defer rows.Close()

	extras := []Order{}
	for rows.Next() {
		var o Order
		var parentNumber string
		if err := rows.Scan(orderScanTargets(&o, &parentNumber)...); err != nil {
			return nil, fmt.Errorf("failed to scan extra work order: %w", err)
		}
		o.DisplayNumber = ResolveDisplayNumber(&o, parentNumber)
		extras = append(extras, o)
	}
	return extras, rows.Err()
}

func insertOrderLines(ctx context.Context, tx pgx.Tx, orderID int, lines []OrderLine) error {
	for _, l := range lines {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_lines (order_id, description, quantity, unit, unit_price,
			                         discount_percent, discount_amount, line_total, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, orderID, l.Description, l.Quantity, l.Unit, l.UnitPrice,
			l.DiscountPercent, l.DiscountAmount, l.LineTotal, l.SortOrder)
		if err != nil {
			return fmt.Errorf("failed to insert order line %d: %w", l.SortOrder, err)
		}
	}
	return nil
}

func customerExists(ctx context.Context, q db.Querier, customerID int) error {
	var id int
	err := q.QueryRow(ctx, "SELECT id FROM customers WHERE id = $1", customerID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Resource: "customer", ID: customerID}
		}
		return fmt.Errorf("failed to look up customer %d: %w", customerID, err)
	}
	return nil
}

func hasLiveInvoice(ctx context.Context, q db.Querier, orderID int) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM invoices WHERE order_id = $1 AND deleted_at IS NULL)",
		orderID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check invoice for order %d: %w", orderID, err)
	}
	return exists, nil
}

func (s *orderService) record(ctx context.Context, orderID int, activityType, description string, actorID int) {
	s.timeline.Append(ctx, audit.New(orderID, activityType, description, actorID))
}

// ── Creation ─────────────────────────────────────────────────────────────────

func (s *orderService) CreateMainOrder(ctx context.Context, in OrderInput) (*Order, error) {
	if in.CustomerID <= 0 {
		return nil, newValidation("customer_id", "customer is required")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, newValidation("title", "title is required")
	}
	vatRate := s.defaultVatRate
	if in.VatRate != nil {
		vatRate = *in.VatRate
	}
	if err := validateVatRate(vatRate); err != nil {
		return nil, err
	}
	lines, err := buildLines(in.Lines)
	if err != nil {
		return nil, err
	}
	totals := ComputeTotals(lines, vatRate)
	if err := validateTotals(totals); err != nil {
		return nil, err
	}

	var orderID int
	var number string
	err = db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := customerExists(ctx, tx, in.CustomerID); err != nil {
			return err
		}

		number, err = s.numbering.NextOrderNumber(ctx, tx)
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO orders (order_number, customer_id, title, terms, status,
			                    subtotal, vat_rate, vat_amount, total, created_by)
			VALUES ($1, $2, $3, $4, 'draft', $5, $6, $7, $8, $9)
			RETURNING id
		`, number, in.CustomerID, title, strings.TrimSpace(in.Terms),
			totals.Subtotal, vatRate, totals.VatAmount, totals.Total, in.ActorID).Scan(&orderID)
		if err != nil {
			if uniqueViolation(err) {
				return newConflict("order number %s is already taken, please retry", number)
			}
			return fmt.Errorf("failed to insert order: %w", err)
		}
		return insertOrderLines(ctx, tx, orderID, lines)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, orderID, audit.TypeOrderCreated, fmt.Sprintf("Order %s created", number), in.ActorID)
	return s.GetOrder(ctx, orderID)
}

func (s *orderService) CreateExtraWork(ctx context.Context, parentID int, in OrderInput) (*Order, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, newValidation("title", "title is required")
	}
	if in.VatRate != nil {
		if err := validateVatRate(*in.VatRate); err != nil {
			return nil, err
		}
	}
	lines, err := buildLines(in.Lines)
	if err != nil {
		return nil, err
	}

	var orderID int
	var display string
	err = db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		parent, err := fetchOrder(ctx, tx, parentID, true)
		if err != nil {
			var nf *NotFoundError
			if errors.As(err, &nf) {
				return &NotFoundError{Resource: "parent order", ID: parentID}
			}
			return err
		}
		if _, ok := parent.Kind().(ExtraWork); ok {
			return newValidation("parent_order_id", "extra work can only be added to a main order, %s is itself extra work", parent.DisplayNumber)
		}

		sub, err := s.numbering.NextExtraWorkNumber(ctx, tx, parentID)
		if err != nil {
			return err
		}

		vatRate := parent.VatRate
		if in.VatRate != nil {
			vatRate = *in.VatRate
		}
		terms := strings.TrimSpace(in.Terms)
		if terms == "" {
			terms = parent.Terms
		}
		totals := ComputeTotals(lines, vatRate)
		if err := validateTotals(totals); err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO orders (order_number, parent_order_id, sub_number, is_extra_work,
			                    customer_id, title, terms, status, accepted_at,
			                    subtotal, vat_rate, vat_amount, total, created_by)
			VALUES ($1, $2, $3, TRUE, $4, $5, $6, 'accepted', NOW(), $7, $8, $9, $10, $11)
			RETURNING id
		`, parent.OrderNumber, parentID, sub, parent.CustomerID, title, terms,
			totals.Subtotal, vatRate, totals.VatAmount, totals.Total, in.ActorID).Scan(&orderID)
		if err != nil {
			if uniqueViolation(err) {
				return newConflict("extra work number %d is already taken for order %s, please retry", sub, parent.OrderNumber)
			}
			return fmt.Errorf("failed to insert extra work order: %w", err)
		}
		display = FormatDisplayNumber(parent.OrderNumber, sub)
		return insertOrderLines(ctx, tx, orderID, lines)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, orderID, audit.TypeExtraWorkCreated, fmt.Sprintf("Extra work %s created", display), in.ActorID)
	s.record(ctx, parentID, audit.TypeExtraWorkCreated, fmt.Sprintf("Extra work %s added", display), in.ActorID)
	return s.GetOrder(ctx, orderID)
}

// ── Editing ──────────────────────────────────────────────────────────────────

func (s *orderService) UpdateOrder(ctx context.Context, orderID int, upd OrderUpdate) (*Order, error) {
	var lines []OrderLine
	if upd.Lines != nil {
		var err error
		if lines, err = buildLines(upd.Lines); err != nil {
			return nil, err
		}
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, newValidation("title", "title is required")
	}
	if upd.VatRate != nil {
		if err := validateVatRate(*upd.VatRate); err != nil {
			return nil, err
		}
	}

	var number string
	err := db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		o, err := fetchOrder(ctx, tx, orderID, true)
		if err != nil {
			return err
		}
		number = o.DisplayNumber

		if upd.CustomerID != nil && *upd.CustomerID != o.CustomerID {
			if o.IsExtraWork {
				return newValidation("customer_id", "extra work always belongs to the customer of its main order")
			}
			if err := customerExists(ctx, tx, *upd.CustomerID); err != nil {
				return err
			}
			o.CustomerID = *upd.CustomerID
		}
		if upd.Title != nil {
			o.Title = strings.TrimSpace(*upd.Title)
		}
		if upd.Terms != nil {
			o.Terms = strings.TrimSpace(*upd.Terms)
		}
		if upd.VatRate != nil {
			o.VatRate = *upd.VatRate
		}

		if lines != nil {
			if _, err := tx.Exec(ctx, "DELETE FROM order_lines WHERE order_id = $1", orderID); err != nil {
				return fmt.Errorf("failed to clear order lines: %w", err)
			}
			if err := insertOrderLines(ctx, tx, orderID, lines); err != nil {
				return err
			}
		} else if lines, err = fetchOrderLines(ctx, tx, orderID); err != nil {
			return err
		}

		totals := ComputeTotals(lines, o.VatRate)
		if err := validateTotals(totals); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE orders
			SET customer_id = $2, title = $3, terms = $4,
			    subtotal = $5, vat_rate = $6, vat_amount = $7, total = $8,
			    updated_at = NOW()
			WHERE id = $1
		`, orderID, o.CustomerID, o.Title, o.Terms,
			totals.Subtotal, o.VatRate, totals.VatAmount, totals.Total)
		if err != nil {
			return fmt.Errorf("failed to update order %d: %w", orderID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, orderID, audit.TypeOrderUpdated, fmt.Sprintf("Order %s updated", number), upd.ActorID)
	return s.GetOrder(ctx, orderID)
}

// DeleteOrder removes an order with its own lines and expenses. A main order that
// still has extra work, and any order with a live invoice, is refused.
func (s *orderService) DeleteOrder(ctx context.Context, orderID, actorID int) error {
	var number string
	err := db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		o, err := fetchOrder(ctx, tx, orderID, true)
		if err != nil {
			return err
		}
		number = o.DisplayNumber

		if !o.IsExtraWork {
			var extras int
			if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM orders WHERE parent_order_id = $1", orderID).Scan(&extras); err != nil {
				return fmt.Errorf("failed to count extra work: %w", err)
			}
			if extras > 0 {
				return newConflict("order %s has %d extra work order(s); delete them first", number, extras)
			}
		}

		invoiced, err := hasLiveInvoice(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if invoiced {
			return newConflict("order %s is already invoiced; delete the invoice first", number)
		}

		// Soft-deleted invoices only keep the order row referenced. Their numbers
		// stay reserved in number_sequences.
		if _, err := tx.Exec(ctx, "DELETE FROM invoices WHERE order_id = $1 AND deleted_at IS NOT NULL", orderID); err != nil {
			return fmt.Errorf("failed to purge deleted invoices: %w", err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM orders WHERE id = $1", orderID); err != nil {
			return fmt.Errorf("failed to delete order %d: %w", orderID, err)
		}
		if !o.IsExtraWork {
			if _, err := tx.Exec(ctx, "DELETE FROM number_sequences WHERE name = $1", extraWorkSeries(orderID)); err != nil {
				return fmt.Errorf("failed to drop extra work series of order %d: %w", orderID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.record(ctx, orderID, audit.TypeOrderDeleted, fmt.Sprintf("Order %s deleted", number), actorID)
	return nil
}

// ── Lifecycle ────────────────────────────────────────────────────────────────

func (s *orderService) SendOrder(ctx context.Context, orderID, actorID int) (*Order, error) {
	return s.transition(ctx, orderID, ActionSend, actorID)
}

func (s *orderService) AcceptOrder(ctx context.Context, orderID, actorID int) (*Order, error) {
	return s.transition(ctx, orderID, ActionAccept, actorID)
}

func (s *orderService) RejectOrder(ctx context.Context, orderID, actorID int) (*Order, error) {
	return s.transition(ctx, orderID, ActionReject, actorID)
}

func (s *orderService) RevertOrder(ctx context.Context, orderID, actorID int) (*Order, error) {
	return s.transition(ctx, orderID, ActionRevert, actorID)
}

// transitionSQL holds the timestamp side effects of each action.
var transitionSQL = map[Action]string{
	ActionSend:   ", sent_at = NOW()",
	ActionAccept: ", accepted_at = NOW()",
	ActionReject: "",
	ActionRevert: ", accepted_at = NULL, sent_at = NULL",
}

// transition applies action under a row lock on the order, so it serializes with
// invoice creation and with concurrent transitions of the same order.
func (s *orderService) transition(ctx context.Context, orderID int, action Action, actorID int) (*Order, error) {
	var from, to OrderStatus
	var number string
	err := db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		o, err := fetchOrder(ctx, tx, orderID, true)
		if err != nil {
			return err
		}
		number = o.DisplayNumber
		from = o.Status

		to, err = NextStatus(o.Status, action)
		if err != nil {
			return err
		}

		switch action {
		case ActionSend:
			if strings.TrimSpace(o.CustomerEmail) == "" {
				return newValidation("customer_email", "customer %s has no email address, cannot send order %s", o.CustomerName, number)
			}
		case ActionRevert:
			if o.Status == StatusAccepted {
				invoiced, err := hasLiveInvoice(ctx, tx, orderID)
				if err != nil {
					return err
				}
				if invoiced {
					return newConflict("order %s is already invoiced; delete the invoice before reverting", number)
				}
			}
		}

		_, err = tx.Exec(ctx,
			"UPDATE orders SET status = $2, updated_at = NOW()"+transitionSQL[action]+" WHERE id = $1",
			orderID, to)
		if err != nil {
			return fmt.Errorf("failed to %s order %d: %w", action, orderID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, orderID, action.activityType(), fmt.Sprintf("Order %s: %s → %s", number, from, to), actorID)
	return s.GetOrder(ctx, orderID)
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *orderService) GetOrder(ctx context.Context, orderID int) (*Order, error) {
	o, err := fetchOrder(ctx, s.pool, orderID, false)
	if err != nil {
		return nil, err
	}
	if o.Lines, err = fetchOrderLines(ctx, s.pool, orderID); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *orderService) GetOrderByNumber(ctx context.Context, display string) (*Order, error) {
	number, sub, err := ParseDisplayNumber(display)
	if err != nil {
		return nil, err
	}

	query := "SELECT o.id FROM orders o WHERE o.parent_order_id IS NULL AND o.order_number = $1 AND $2::int = 0"
	if sub > 0 {
		query = `SELECT o.id FROM orders o JOIN orders p ON p.id = o.parent_order_id
			WHERE p.order_number = $1 AND o.sub_number = $2`
	}
	var id int
	if err := s.pool.QueryRow(ctx, query, number, sub).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "order", ID: display}
		}
		return nil, fmt.Errorf("failed to look up order %s: %w", display, err)
	}
	return s.GetOrder(ctx, id)
}

// ListOrders returns order rows with their quick financial aggregate, computed in
// a single query rather than per order.
func (s *orderService) ListOrders(ctx context.Context, filter OrderFilter) ([]OrderSummary, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, newValidation("status", "unknown order status %q", filter.Status)
	}

	rows, err := s.pool.Query(ctx, `
		WITH base AS (`+orderSelect+`
			WHERE ($1::text = '' OR o.status = $1)
			  AND ($2::int = 0 OR o.customer_id = $2)
			  AND ($3::bool OR o.parent_order_id IS NULL)
		)
		SELECT base.*,
		       (SELECT COUNT(*) FROM orders x WHERE x.parent_order_id = base.id),
		       (SELECT COALESCE(SUM(x.total), 0) FROM orders x WHERE x.parent_order_id = base.id),
		       (SELECT COALESCE(SUM(e.amount), 0) FROM expenses e WHERE e.order_id = base.id),
		       (SELECT COALESCE(SUM(e.amount), 0) FROM expenses e
		          JOIN orders x ON x.id = e.order_id
		         WHERE x.parent_order_id = base.id),
		       EXISTS (SELECT 1 FROM invoices i WHERE i.order_id = base.id AND i.deleted_at IS NULL)
		FROM base
		ORDER BY base.order_number::bigint DESC, COALESCE(base.sub_number, 0)
	`, string(filter.Status), filter.CustomerID, filter.IncludeExtras)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	summaries := []OrderSummary{}
	for rows.Next() {
		var sum OrderSummary
		var parentNumber string
		var revenueExtra, expensesMain, expensesExtra decimal.Decimal
		targets := append(orderScanTargets(&sum.Order, &parentNumber),
			&sum.ExtraWorkCount, &revenueExtra, &expensesMain, &expensesExtra, &sum.HasInvoice)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan order summary: %w", err)
		}
		sum.DisplayNumber = ResolveDisplayNumber(&sum.Order, parentNumber)
		sum.Financials = buildFinancials(sum.Total, revenueExtra, expensesMain, expensesExtra)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// GetOrderWorkspace reads the order, its lines, extra work, live invoice, expenses
// across the hierarchy and the financial rollup from one snapshot. Any failing
// sub-read fails the whole call.
func (s *orderService) GetOrderWorkspace(ctx context.Context, orderID int) (*Workspace, error) {
	var ws Workspace
	err := db.InSnapshot(ctx, s.pool, func(tx pgx.Tx) error {
		o, err := fetchOrder(ctx, tx, orderID, false)
		if err != nil {
			return err
		}
		ws.Order = o

		if ws.Lines, err = fetchOrderLines(ctx, tx, orderID); err != nil {
			return err
		}
		o.Lines = ws.Lines

		ws.ExtraWorkOrders = []Order{}
		if !o.IsExtraWork {
			if ws.ExtraWorkOrders, err = fetchExtraWork(ctx, tx, orderID); err != nil {
				return err
			}
		}

		if ws.Invoice, err = fetchLiveInvoiceByOrder(ctx, tx, orderID); err != nil {
			return err
		}

		ids := []int{orderID}
		for _, e := range ws.ExtraWorkOrders {
			ids = append(ids, e.ID)
		}
		if ws.Expenses, err = fetchExpenses(ctx, tx, ids); err != nil {
			return err
		}

		expensesMain, expensesExtra := decimal.Zero, decimal.Zero
		for _, e := range ws.Expenses {
			if e.OrderID == orderID {
				expensesMain = expensesMain.Add(e.Amount)
			} else {
				expensesExtra = expensesExtra.Add(e.Amount)
			}
		}
		ws.Financials = ComputeFinancials(o, ws.ExtraWorkOrders, expensesMain, expensesExtra)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ws, nil
}
