package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore writes activities to order_activities and reads an order's timeline back.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Name() string { return "postgres" }

// Write is idempotent on EventID.
func (s *PostgresStore) Write(ctx context.Context, a Activity) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO order_activities (event_id, order_id, activity_type, description, actor_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING
	`, a.EventID, a.OrderID, a.Type, a.Description, a.ActorID, a.OccurredAt)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// List returns the timeline of orderID, oldest first.
func (s *PostgresStore) List(ctx context.Context, orderID int) ([]Activity, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT event_id, order_id, activity_type, description, actor_id, occurred_at
		FROM order_activities
		WHERE order_id = $1
		ORDER BY occurred_at, id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	activities := []Activity{}
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.EventID, &a.OrderID, &a.Type, &a.Description, &a.ActorID, &a.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
