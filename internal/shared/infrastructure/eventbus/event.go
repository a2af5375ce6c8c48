package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/clinicflow/pkg/observability"
)

// Event is the envelope delivered to consumers and to the broker.
type Event struct {
	EventID       uuid.UUID       `json:"event_id"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	RunID         string          `json:"run_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEvent wraps payload in an envelope stamped with the correlation and run
// ids carried by ctx.
func NewEvent(ctx context.Context, routingKey string, payload any) (*Event, error) {
	if routingKey == "" {
		return nil, errors.New("routing key is required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", routingKey, err)
	}
	return &Event{
		EventID:       uuid.New(),
		RoutingKey:    routingKey,
		OccurredAt:    time.Now().UTC(),
		CorrelationID: observability.CorrelationIDFromContext(ctx),
		RunID:         observability.RunIDFromContext(ctx),
		Payload:       data,
	}, nil
}

// Decode unmarshals the payload into v.
func (e *Event) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}
