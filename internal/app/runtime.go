package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"ops-portal/internal/audit"
	"ops-portal/internal/config"
	"ops-portal/internal/core"
	"ops-portal/internal/db"
)

// Runtime is a wired ApplicationService together with the resources it owns.
type Runtime struct {
	Service ApplicationService
	Pool    *pgxpool.Pool

	recorder *audit.Recorder
	amqp     *audit.AMQPSink
	log      *zap.Logger
}

// Open connects to the database, starts the timeline recorder and wires every
// core service. The caller must Close the returned Runtime.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Runtime, error) {
	pool, err := db.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	store := audit.NewPostgresStore(pool)
	sinks := audit.MultiSink{store, audit.NewLogSink(log)}

	var amqpSink *audit.AMQPSink
	if cfg.Audit.AMQPURL != "" {
		amqpSink, err = audit.DialAMQP(cfg.Audit.AMQPURL, cfg.Audit.Exchange)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("audit broker: %w", err)
		}
		sinks = append(sinks, amqpSink)
		log.Info("publishing order activity", zap.String("exchange", cfg.Audit.Exchange))
	}

	recorder := audit.NewRecorder(sinks, cfg.Audit.Buffer, log)
	numbering := core.NewNumberingService()

	svc := NewAppService(
		core.NewCustomerService(pool),
		core.NewOrderService(pool, numbering, recorder, cfg.Orders.DefaultVatRate),
		core.NewInvoiceService(pool, numbering, recorder, cfg.Orders.InvoiceDueDays),
		core.NewExpenseService(pool, recorder),
		core.NewUserService(pool),
		store,
	)

	return &Runtime{
		Service:  svc,
		Pool:     pool,
		recorder: recorder,
		amqp:     amqpSink,
		log:      log,
	}, nil
}

// Close drains pending timeline activity, then releases the broker and the pool.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if err := rt.recorder.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("audit recorder: %w", err))
	}
	if rt.amqp != nil {
		if err := rt.amqp.Close(); err != nil {
			errs = append(errs, fmt.Errorf("audit broker: %w", err))
		}
	}
	rt.Pool.Close()
	return errors.Join(errs...)
}
