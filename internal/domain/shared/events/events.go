package events

import "time"

// DomainEvent is emitted by aggregates and shipped through the outbox.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder is embedded by aggregates to collect events until the unit of
// work persists them.
type EventRecorder struct {
	pending []DomainEvent
}

func (r *EventRecorder) Record(event DomainEvent) {
	if event == nil {
		return
	}
	r.pending = append(r.pending, event)
}

func (r *EventRecorder) PendingEvents() []DomainEvent {
	out := make([]DomainEvent, len(r.pending))
	copy(out, r.pending)
	return out
}

func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}

// Drain returns pending events and clears the recorder.
func (r *EventRecorder) Drain() []DomainEvent {
	out := r.PendingEvents()
	r.ClearEvents()
	return out
}
