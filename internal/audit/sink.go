package audit

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Sink persists or forwards a single activity. Implementations are called from the
// recorder's worker goroutine only, one activity at a time.
type Sink interface {
	Name() string
	Write(ctx context.Context, a Activity) error
}

// MultiSink fans an activity out to every sink. A failing sink does not stop the others.
type MultiSink []Sink

func (m MultiSink) Name() string { return "multi" }

func (m MultiSink) Write(ctx context.Context, a Activity) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, a); err != nil {
			errs = append(errs, sinkError{sink: s.Name(), err: err})
		}
	}
	return errors.Join(errs...)
}

type sinkError struct {
	sink string
	err  error
}

func (e sinkError) Error() string { return e.sink + ": " + e.err.Error() }
func (e sinkError) Unwrap() error { return e.err }

// LogSink writes each activity as a structured log line.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Write(_ context.Context, a Activity) error {
	s.log.Info("order activity",
		zap.String("event_id", a.EventID.String()),
		zap.Int("order_id", a.OrderID),
		zap.String("activity_type", a.Type),
		zap.String("description", a.Description),
		zap.Int("actor_id", a.ActorID),
		zap.Time("occurred_at", a.OccurredAt),
	)
	return nil
}
