package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"ops-portal/internal/audit"
	"ops-portal/internal/db"
)

// ExpenseInput is a cost to book against a main or extra-work order.
type ExpenseInput struct {
	OrderID     int
	Amount      decimal.Decimal
	ExpenseDate *time.Time // nil: today
	Category    string
	Description string
	ActorID     int
}

// ExpenseService records the costs that feed the profit side of the financial rollup.
type ExpenseService interface {
	RecordExpense(ctx context.Context, in ExpenseInput) (*Expense, error)
	// ListExpenses returns the expenses booked directly on orderID.
	ListExpenses(ctx context.Context, orderID int) ([]Expense, error)
	DeleteExpense(ctx context.Context, expenseID, actorID int) error
}

type expenseService struct {
	pool     *pgxpool.Pool
	timeline audit.Appender
}

func NewExpenseService(pool *pgxpool.Pool, timeline audit.Appender) ExpenseService {
	if timeline == nil {
		timeline = audit.Nop{}
	}
	return &expenseService{pool: pool, timeline: timeline}
}

const expenseColumns = "id, order_id, amount, expense_date, category, description, created_by, created_at"

func scanExpense(row pgx.Row) (*Expense, error) {
	var e Expense
	err := row.Scan(&e.ID, &e.OrderID, &e.Amount, &e.ExpenseDate, &e.Category, &e.Description, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// fetchExpenses returns every expense booked on any of orderIDs.
func fetchExpenses(ctx context.Context, q db.Querier, orderIDs []int) ([]Expense, error) {
	rows, err := q.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE order_id = ANY($1)
		ORDER BY expense_date, id
	`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

func (s *expenseService) RecordExpense(ctx context.Context, in ExpenseInput) (*Expense, error) {
	if !in.Amount.IsPositive() {
		return nil, newValidation("amount", "expense amount must be greater than zero")
	}
	date := time.Now().UTC()
	if in.ExpenseDate != nil {
		date = *in.ExpenseDate
	}
	y, m, d := date.Date()
	date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var e *Expense
	err := db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := fetchOrder(ctx, tx, in.OrderID, false); err != nil {
			return err
		}
		var err error
		e, err = scanExpense(tx.QueryRow(ctx, `
			INSERT INTO expenses (order_id, amount, expense_date, category, description, created_by)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+expenseColumns,
			in.OrderID, in.Amount.Round(2), date, strings.TrimSpace(in.Category),
			strings.TrimSpace(in.Description), in.ActorID))
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.timeline.Append(ctx, audit.New(in.OrderID, audit.TypeExpenseRecorded,
		fmt.Sprintf("Expense of %s recorded (%s)", e.Amount.StringFixed(2), e.Category), in.ActorID))
	return e, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, orderID int) ([]Expense, error) {
	if _, err := fetchOrder(ctx, s.pool, orderID, false); err != nil {
		return nil, err
	}
	return fetchExpenses(ctx, s.pool, []int{orderID})
}

func (s *expenseService) DeleteExpense(ctx context.Context, expenseID, actorID int) error {
	e, err := scanExpense(s.pool.QueryRow(ctx, "DELETE FROM expenses WHERE id = $1 RETURNING "+expenseColumns, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Resource: "expense", ID: expenseID}
		}
		return fmt.Errorf("failed to delete expense %d: %w", expenseID, err)
	}

	s.timeline.Append(ctx, audit.New(e.OrderID, audit.TypeExpenseDeleted,
		fmt.Sprintf("Expense of %s deleted", e.Amount.StringFixed(2)), actorID))
	return nil
}
