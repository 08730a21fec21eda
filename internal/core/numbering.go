package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const (
	seriesOrder   = "order"
	seriesInvoice = "invoice"

	firstOrderNumber   int64 = 1
	firstInvoiceNumber int64 = 5000
)

// NumberingService allocates order numbers, extra-work sub-numbers and invoice numbers.
// Every method takes the caller's transaction: the allocated value must be consumed by
// an INSERT in that same transaction, otherwise uniqueness is not guaranteed.
type NumberingService interface {
	// NextOrderNumber returns the next main order number, zero-padded ("0001", "0002", ...).
	NextOrderNumber(ctx context.Context, tx pgx.Tx) (string, error)
	// NextExtraWorkNumber locks the parent order row and returns the next sub-number under
	// it, starting at 1. Sub-numbers of deleted extra work are not reissued.
	NextExtraWorkNumber(ctx context.Context, tx pgx.Tx, parentID int) (int, error)
	// NextInvoiceNumber returns the next invoice number, never lower than 5000.
	NextInvoiceNumber(ctx context.Context, tx pgx.Tx) (int64, error)
}

type numberingService struct{}

func NewNumberingService() NumberingService {
	return &numberingService{}
}

func (s *numberingService) NextOrderNumber(ctx context.Context, tx pgx.Tx) (string, error) {
	n, err := nextInSeries(ctx, tx, seriesOrder, `
		SELECT COALESCE(MAX(order_number::bigint), 0) AS max_number
		FROM orders
		WHERE parent_order_id IS NULL AND order_number ~ '^[0-9]+$'
	`, firstOrderNumber)
	if err != nil {
		return "", err
	}
	return FormatOrderNumber(n), nil
}

func (s *numberingService) NextInvoiceNumber(ctx context.Context, tx pgx.Tx) (int64, error) {
	// Soft-deleted invoices count too, so a deleted invoice's number is never reissued.
	return nextInSeries(ctx, tx, seriesInvoice, `
		SELECT COALESCE(MAX(invoice_number), 0) AS max_number
		FROM invoices
	`, firstInvoiceNumber)
}

func (s *numberingService) NextExtraWorkNumber(ctx context.Context, tx pgx.Tx, parentID int) (int, error) {
	var id int
	err := tx.QueryRow(ctx, "SELECT id FROM orders WHERE id = $1 FOR UPDATE", parentID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, &NotFoundError{Resource: "parent order", ID: parentID}
		}
		return 0, fmt.Errorf("failed to lock parent order %d: %w", parentID, err)
	}

	n, err := nextInSeries(ctx, tx, extraWorkSeries(parentID), `
		SELECT COALESCE(MAX(sub_number), 0) AS max_number
		FROM orders
		WHERE parent_order_id = $3::int
	`, 1, parentID)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// extraWorkSeries names the per-parent sub-number series.
func extraWorkSeries(parentID int) string {
	return fmt.Sprintf("extra_work:%d", parentID)
}

// nextInSeries bumps the named number_sequences row and returns the new value:
//
//	GREATEST(last_number + 1, max_existing + 1, floor)
//
// The upsert takes a row lock, so concurrent callers queue behind each other and
// each sees the value the previous one committed. maxQuery may reference args as $3...
func nextInSeries(ctx context.Context, tx pgx.Tx, series, maxQuery string, floor int64, args ...any) (int64, error) {
	query := fmt.Sprintf(`
		WITH existing AS (%s)
		INSERT INTO number_sequences (name, last_number)
		SELECT $1, GREATEST(existing.max_number + 1, $2::bigint) FROM existing
		ON CONFLICT (name) DO UPDATE
		SET last_number = GREATEST(number_sequences.last_number + 1, EXCLUDED.last_number)
		RETURNING last_number
	`, maxQuery)

	var n int64
	params := append([]any{series, floor}, args...)
	if err := tx.QueryRow(ctx, query, params...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to allocate %s number: %w", series, err)
	}
	return n, nil
}
