// Package events publishes notifications about changes to transactions so
// other services (notifications, budget alerts, sync workers) can react
// without polling the API.
package events

import (
	"context"
	"encoding/json"
	"time"

	"expensetracker/internal/uuid"
)

// Kind names what happened. It doubles as the AMQP routing key.
type Kind string

const (
	TransactionCreated Kind = "transaction.created"
	TransactionUpdated Kind = "transaction.updated"
	TransactionDeleted Kind = "transaction.deleted"
)

// Event is the message body published for every transaction mutation.
type Event struct {
	ID            string    `json:"id"`
	Kind          Kind      `json:"kind"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewEvent creates an Event with a fresh ID stamped with the current time.
func NewEvent(kind Kind, userID, transactionID string) Event {
	return Event{
		ID:            uuid.New(),
		Kind:          kind,
		UserID:        userID,
		TransactionID: transactionID,
		OccurredAt:    time.Now().UTC(),
	}
}

// ToJSON encodes the event for the wire.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher discards every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
