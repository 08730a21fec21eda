package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ops-portal/internal/audit"
	"ops-portal/internal/db"
)

// DefaultInvoiceDueDays is used when NewInvoiceService is given a non-positive value.
const DefaultInvoiceDueDays = 14

// InvoiceFilter narrows ListInvoices. Zero values mean "no filter".
type InvoiceFilter struct {
	Status     InvoiceStatus
	CustomerID int
}

// InvoiceService turns accepted orders into frozen invoice snapshots and tracks
// their payment status.
type InvoiceService interface {
	// CreateInvoiceFromOrder snapshots an accepted order. dueDate nil means today
	// plus the configured number of days.
	CreateInvoiceFromOrder(ctx context.Context, orderID int, dueDate *time.Time, actorID int) (*Invoice, error)
	GetInvoice(ctx context.Context, invoiceID int) (*Invoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)
	MarkInvoiceSent(ctx context.Context, invoiceID, actorID int) (*Invoice, error)
	MarkInvoicePaid(ctx context.Context, invoiceID, actorID int) (*Invoice, error)
	// DeleteInvoice soft-deletes the invoice. The order keeps its status.
	DeleteInvoice(ctx context.Context, invoiceID, actorID int) error
}

type invoiceService struct {
	pool      *pgxpool.Pool
	numbering NumberingService
	timeline  audit.Appender
	dueDays   int
	now       func() time.Time
}

func NewInvoiceService(pool *pgxpool.Pool, numbering NumberingService, timeline audit.Appender, dueDays int) InvoiceService {
	if timeline == nil {
		timeline = audit.Nop{}
	}
	if dueDays <= 0 {
		dueDays = DefaultInvoiceDueDays
	}
	return &invoiceService{
		pool:      pool,
		numbering: numbering,
		timeline:  timeline,
		dueDays:   dueDays,
		now:       time.Now,
	}
}

const invoiceSelect = `
	SELECT id, invoice_number, order_id, customer_id, full_order_number, status,
	       subtotal, vat_rate, vat_amount, total, due_date, sent_at, paid_at,
	       created_by, created_at
	FROM invoices
`

func invoiceScanTargets(inv *Invoice) []any {
	return []any{
		&inv.ID, &inv.InvoiceNumber, &inv.OrderID, &inv.CustomerID, &inv.FullOrderNumber, &inv.Status,
		&inv.Subtotal, &inv.VatRate, &inv.VatAmount, &inv.Total, &inv.DueDate, &inv.SentAt, &inv.PaidAt,
		&inv.CreatedBy, &inv.CreatedAt,
	}
}

func fetchInvoice(ctx context.Context, q db.Querier, invoiceID int, forUpdate bool) (*Invoice, error) {
	query := invoiceSelect + " WHERE id = $1 AND deleted_at IS NULL"
	if forUpdate {
		query += " FOR UPDATE"
	}
	var inv Invoice
	if err := q.QueryRow(ctx, query, invoiceID).Scan(invoiceScanTargets(&inv)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "invoice", ID: invoiceID}
		}
		return nil, fmt.Errorf("failed to get invoice %d: %w", invoiceID, err)
	}
	return &inv, nil
}

// fetchLiveInvoiceByOrder returns the order's non-deleted invoice with its lines,
// or nil when there is none.
func fetchLiveInvoiceByOrder(ctx context.Context, q db.Querier, orderID int) (*Invoice, error) {
	var inv Invoice
	err := q.QueryRow(ctx, invoiceSelect+" WHERE order_id = $1 AND deleted_at IS NULL", orderID).
		Scan(invoiceScanTargets(&inv)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invoice for order %d: %w", orderID, err)
	}
	if inv.Lines, err = fetchInvoiceLines(ctx, q, inv.ID); err != nil {
		return nil, err
	}
	return &inv, nil
}

func fetchInvoiceLines(ctx context.Context, q db.Querier, invoiceID int) ([]InvoiceLine, error) {
	rows, err := q.Query(ctx, `
		SELECT id, invoice_id, description, quantity, unit, unit_price,
		       discount_percent, discount_amount, line_total, sort_order
		FROM invoice_lines
		WHERE invoice_id = $1
		ORDER BY sort_order, id
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice lines: %w", err)
	}
	defer rows.Close()

	lines := []InvoiceLine{}
	for rows.Next() {
		var l InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Description, &l.Quantity, &l.Unit, &l.UnitPrice,
			&l.DiscountPercent, &l.DiscountAmount, &l.LineTotal, &l.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan invoice line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *invoiceService) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *invoiceService) CreateInvoiceFromOrder(ctx context.Context, orderID int, dueDate *time.Time, actorID int) (*Invoice, error) {
	due := s.today().AddDate(0, 0, s.dueDays)
	if dueDate != nil {
		y, m, d := dueDate.Date()
		due = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	var invoiceID int
	var number int64
	var display string
	err := db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		// The order row lock serializes this with revert and with a concurrent
		// invoice creation for the same order.
		o, err := fetchOrder(ctx, tx, orderID, true)
		if err != nil {
			return err
		}
		display = o.DisplayNumber

		if o.Status != StatusAccepted {
			return newConflict("order %s must be accepted before invoicing (status is %s)", display, o.Status)
		}
		invoiced, err := hasLiveInvoice(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if invoiced {
			return newConflict("order %s is already invoiced", display)
		}

		lines, err := fetchOrderLines(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if number, err = s.numbering.NextInvoiceNumber(ctx, tx); err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO invoices (invoice_number, order_id, customer_id, full_order_number, status,
			                      subtotal, vat_rate, vat_amount, total, due_date, created_by)
			VALUES ($1, $2, $3, $4, 'draft', $5, $6, $7, $8, $9, $10)
			RETURNING id
		`, number, orderID, o.CustomerID, display,
			o.Subtotal, o.VatRate, o.VatAmount, o.Total, due, actorID).Scan(&invoiceID)
		if err != nil {
			if uniqueViolation(err) {
				return newConflict("order %s is already invoiced", display)
			}
			return fmt.Errorf("failed to insert invoice: %w", err)
		}

		for _, l := range lines {
			_, err := tx.Exec(ctx, `
				INSERT INTO invoice_lines (invoice_id, description, quantity, unit, unit_price,
				                           discount_percent, discount_amount, line_total, sort_order)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`, invoiceID, l.Description, l.Quantity, l.Unit, l.UnitPrice,
				l.DiscountPercent, l.DiscountAmount, l.LineTotal, l.SortOrder)
			if err != nil {
				return fmt.Errorf("failed to copy order line %d to invoice: %w", l.SortOrder, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.timeline.Append(ctx, audit.New(orderID, audit.TypeInvoiceCreated,
		fmt.Sprintf("Invoice %d created for order %s", number, display), actorID))
	return s.GetInvoice(ctx, invoiceID)
}

func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID int) (*Invoice, error) {
	inv, err := fetchInvoice(ctx, s.pool, invoiceID, false)
	if err != nil {
		return nil, err
	}
	if inv.Lines, err = fetchInvoiceLines(ctx, s.pool, invoiceID); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]Invoice, error) {
	switch filter.Status {
	case "", InvoiceDraft, InvoiceSent, InvoicePaid:
	default:
		return nil, newValidation("status", "unknown invoice status %q", filter.Status)
	}

	rows, err := s.pool.Query(ctx, invoiceSelect+`
		WHERE deleted_at IS NULL
		  AND ($1::text = '' OR status = $1)
		  AND ($2::int = 0 OR customer_id = $2)
		ORDER BY invoice_number DESC
	`, string(filter.Status), filter.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	invoices := []Invoice{}
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(invoiceScanTargets(&inv)...); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (s *invoiceService) MarkInvoiceSent(ctx context.Context, invoiceID, actorID int) (*Invoice, error) {
	return s.setStatus(ctx, invoiceID, InvoiceSent, actorID)
}

func (s *invoiceService) MarkInvoicePaid(ctx context.Context, invoiceID, actorID int) (*Invoice, error) {
	return s.setStatus(ctx, invoiceID, InvoicePaid, actorID)
}

// invoiceTransitions lists the statuses each target status may be reached from.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceSent: {InvoiceDraft},
	InvoicePaid: {InvoiceDraft, InvoiceSent},
}

func (s *invoiceService) setStatus(ctx context.Context, invoiceID int, to InvoiceStatus, actorID int) (*Invoice, error) {
	var inv *Invoice
	err := db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		if inv, err = fetchInvoice(ctx, tx, invoiceID, true); err != nil {
			return err
		}

		allowed := false
		for _, from := range invoiceTransitions[to] {
			if inv.Status == from {
				allowed = true
				break
			}
		}
		if !allowed {
			return newConflict("invoice %d is %s and cannot be marked %s", inv.InvoiceNumber, inv.Status, to)
		}

		column := "sent_at"
		if to == InvoicePaid {
			column = "paid_at"
		}
		_, err = tx.Exec(ctx, "UPDATE invoices SET status = $2, "+column+" = NOW() WHERE id = $1", invoiceID, to)
		if err != nil {
			return fmt.Errorf("failed to update invoice %d: %w", invoiceID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	activity := audit.TypeInvoiceSent
	if to == InvoicePaid {
		activity = audit.TypeInvoicePaid
	}
	s.timeline.Append(ctx, audit.New(inv.OrderID, activity,
		fmt.Sprintf("Invoice %d marked %s", inv.InvoiceNumber, to), actorID))
	return s.GetInvoice(ctx, invoiceID)
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, invoiceID, actorID int) error {
	var inv *Invoice
	err := db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		if inv, err = fetchInvoice(ctx, tx, invoiceID, true); err != nil {
			return err
		}
		if inv.Status == InvoicePaid {
			return newConflict("invoice %d is paid and cannot be deleted", inv.InvoiceNumber)
		}
		if _, err := tx.Exec(ctx, "UPDATE invoices SET deleted_at = NOW() WHERE id = $1", invoiceID); err != nil {
			return fmt.Errorf("failed to delete invoice %d: %w", invoiceID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.timeline.Append(ctx, audit.New(inv.OrderID, audit.TypeInvoiceDeleted,
		fmt.Sprintf("Invoice %d deleted", inv.InvoiceNumber), actorID))
	return nil
}
