package memory

import (
	"context"
	"log/slog"

	appoutbox "staybook/internal/app/outbox"
)

// Publisher delivers one committed event record downstream.
type Publisher interface {
	Deliver(ctx context.Context, record appoutbox.EventRecord) error
}

// Outbox stores records in the Store, alongside the unit of work that wrote
// them. Flush hands committed records to Publisher; records it fails to
// deliver stay queued for the next flush.
type Outbox struct {
	store     *Store
	publisher Publisher
	logger    *slog.Logger
}

func NewOutbox(store *Store, publisher Publisher, logger *slog.Logger) *Outbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Outbox{store: store, publisher: publisher, logger: logger}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	return o.store.write(ctx, op{apply: func(s *Store) {
		s.outbox = append(s.outbox, record)
	}})
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.store.mu.Lock()
	pending := o.store.outbox
	o.store.outbox = nil
	o.store.mu.Unlock()
	if len(pending) == 0 {
		return nil
	}
	if o.publisher == nil {
		o.logger.DebugContext(ctx, "outbox records dropped, no publisher", "count", len(pending))
		return nil
	}
	var failed []appoutbox.EventRecord
	var firstErr error
	for _, rec := range pending {
		if err := o.publisher.Deliver(ctx, rec); err != nil {
			failed = append(failed, rec)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if len(failed) > 0 {
		o.store.mu.Lock()
		o.store.outbox = append(failed, o.store.outbox...)
		o.store.mu.Unlock()
	}
	return firstErr
}

// Pending returns committed records not flushed yet.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.store.mu.RLock()
	defer o.store.mu.RUnlock()
	return append([]appoutbox.EventRecord(nil), o.store.outbox...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
