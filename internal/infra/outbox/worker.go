package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Worker polls the Mongo outbox and hands each claimed record to the Relay.
type Worker struct {
	Store    *Store
	Relay    Relay
	Interval time.Duration
	ID       string
	Backoff  []time.Duration
	Logger   *slog.Logger
}

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Relay.Producer == nil {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx); err != nil && ctx.Err() == nil {
				w.logger().WarnContext(ctx, "outbox relay pass failed", "worker_id", w.ID, "error", err)
			}
		}
	}
}

// drain relays due records until none is left or one fails to claim.
func (w *Worker) drain(ctx context.Context) error {
	for ctx.Err() == nil {
		sent, err := w.processOnce(ctx)
		if err != nil || !sent {
			return err
		}
	}
	return nil
}

func (w *Worker) processOnce(ctx context.Context) (bool, error) {
	doc, err := w.Store.Claim(ctx, w.ID)
	if err != nil || doc == nil {
		return false, err
	}
	if err := w.Relay.Deliver(ctx, doc.record()); err != nil {
		w.logger().WarnContext(ctx, "outbox publish failed", "event_id", doc.ID, "name", doc.Name, "attempts", doc.Attempts+1, "error", err)
		return true, w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
	}
	return true, w.Store.MarkSent(ctx, doc.ID)
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) nextRetry(attempts int) time.Time {
	if attempts < len(w.Backoff) {
		return time.Now().Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return time.Now().Add(w.Backoff[len(w.Backoff)-1])
	}
	return time.Now().Add(5 * time.Second)
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
