// Package outbox stores clinic events in the same transaction as the change
// that raised them and relays them to the event bus afterwards.
package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/eventbus"
)

// Message is a stored event awaiting delivery.
type Message struct {
	ID               int64
	EventID          uuid.UUID
	RoutingKey       string
	Payload          json.RawMessage
	CreatedAt        time.Time
	PublishedAt      *time.Time
	NextRetryAt      *time.Time
	RetryCount       int
	LastError        string
	DeadLetteredAt   *time.Time
	DeadLetterReason string
}

// NewMessage stores the whole envelope as the payload so consumers receive
// the event id and correlation ids.
func NewMessage(event *eventbus.Event) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", event.RoutingKey, err)
	}
	return &Message{
		EventID:    event.EventID,
		RoutingKey: event.RoutingKey,
		Payload:    payload,
		CreatedAt:  event.OccurredAt,
	}, nil
}

// IsPublished returns true if the message has been published.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

// IsDead returns true once the message has been given up on.
func (m *Message) IsDead() bool {
	return m.DeadLetteredAt != nil
}

// CanRetry returns true if the message can be retried.
func (m *Message) CanRetry(maxRetries int) bool {
	return m.RetryCount < maxRetries
}
