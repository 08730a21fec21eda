// Package audit records the per-order activity timeline. Events are appended after
// the originating change has committed and are delivered asynchronously to one or
// more sinks, so a slow or broken sink never fails or delays an order operation.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Activity types written by the order engine.
const (
	TypeOrderCreated     = "order_created"
	TypeOrderUpdated     = "order_updated"
	TypeOrderSent        = "order_sent"
	TypeOrderAccepted    = "order_accepted"
	TypeOrderRejected    = "order_rejected"
	TypeOrderReverted    = "order_reverted"
	TypeOrderDeleted     = "order_deleted"
	TypeExtraWorkCreated = "extra_work_created"
	TypeInvoiceCreated   = "invoice_created"
	TypeInvoiceSent      = "invoice_sent"
	TypeInvoicePaid      = "invoice_paid"
	TypeInvoiceDeleted   = "invoice_deleted"
	TypeExpenseRecorded  = "expense_recorded"
	TypeExpenseDeleted   = "expense_deleted"
)

// Activity is one timeline entry for an order.
type Activity struct {
	EventID     uuid.UUID `json:"event_id"`
	OrderID     int       `json:"order_id"`
	Type        string    `json:"activity_type"`
	Description string    `json:"description"`
	ActorID     int       `json:"actor_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// New builds an Activity with a fresh event id and the current time.
func New(orderID int, activityType, description string, actorID int) Activity {
	return Activity{
		EventID:     uuid.New(),
		OrderID:     orderID,
		Type:        activityType,
		Description: description,
		ActorID:     actorID,
		OccurredAt:  time.Now().UTC(),
	}
}

// Appender accepts activities for delivery. Append must not block on I/O.
type Appender interface {
	Append(ctx context.Context, a Activity)
}

// Nop discards every activity.
type Nop struct{}

func (Nop) Append(context.Context, Activity) {}
