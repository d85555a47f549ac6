package event

import (
	"context"
	"log"
	"time"
)

// Event names published after successful mutations.
const (
	TransactionCreated = "transaction.created"
	TransactionUpdated = "transaction.updated"
	TransactionDeleted = "transaction.deleted"
	PaymentCreated     = "payment.created"
	PaymentUpdated     = "payment.updated"
	PaymentDeleted     = "payment.deleted"
	SummaryRebuilt     = "summary.rebuilt"
)

// Event describes a change to a financial document.
type Event struct {
	Name       string            `json:"name"`
	EntityID   string            `json:"entityId"`
	ActorID    string            `json:"actorId,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
	Data       map[string]string `json:"data,omitempty"`
}

// Publisher delivers events to downstream consumers.
// Implemented by the Kafka producer in the infrastructure layer.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Emit publishes e. Failures are logged, never returned.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if err := p.Publish(ctx, e); err != nil {
		log.Printf("Warning: failed to publish %s for %s: %v", e.Name, e.EntityID, err)
	}
}
