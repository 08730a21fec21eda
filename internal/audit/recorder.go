package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

// Recorder queues activities in a bounded buffer and delivers them to a Sink from a
// single background goroutine. When the buffer is full the activity is dropped and
// a warning is logged.
type Recorder struct {
	sink  Sink
	log   *zap.Logger
	queue chan Activity
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewRecorder starts the delivery goroutine. Call Close to drain and stop it.
func NewRecorder(sink Sink, buffer int, log *zap.Logger) *Recorder {
	if buffer <= 0 {
		buffer = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	r := &Recorder{
		sink:  sink,
		log:   log,
		queue: make(chan Activity, buffer),
		done:  make(chan struct{}),
	}
	go r.run()
	return r
}

// Append enqueues a without waiting for delivery. Missing EventID and OccurredAt are filled in.
func (r *Recorder) Append(_ context.Context, a Activity) {
	if a.EventID == uuid.Nil {
		a.EventID = uuid.New()
	}
	if a.OccurredAt.IsZero() {
		a.OccurredAt = time.Now().UTC()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.log.Warn("audit recorder closed, dropping activity",
			zap.Int("order_id", a.OrderID), zap.String("activity_type", a.Type))
		return
	}

	select {
	case r.queue <- a:
	default:
		r.log.Warn("audit buffer full, dropping activity",
			zap.Int("order_id", a.OrderID), zap.String("activity_type", a.Type))
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for a := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := r.sink.Write(ctx, a); err != nil {
			r.log.Error("failed to write activity",
				zap.String("sink", r.sink.Name()),
				zap.String("event_id", a.EventID.String()),
				zap.Int("order_id", a.OrderID),
				zap.Error(err))
		}
		cancel()
	}
}

// Close stops accepting activities and waits until the queue is drained or ctx ends.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
