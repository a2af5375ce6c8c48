package eventbus

import (
	"context"
	"log/slog"
	"sync"
)

type registration struct {
	id       int
	pattern  string
	consumer EventConsumer
}

// ConsumerRegistry manages event consumers and dispatches events to them.
type ConsumerRegistry struct {
	registrations []registration
	nextID        int
	mu            sync.RWMutex
	logger        *slog.Logger
}

// NewConsumerRegistry creates a new consumer registry.
func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{logger: logger}
}

// Register adds a consumer for its declared patterns.
func (r *ConsumerRegistry) Register(consumer EventConsumer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	for _, pattern := range consumer.EventTypes() {
		r.registrations = append(r.registrations, registration{id: r.nextID, pattern: pattern, consumer: consumer})
		r.logger.Debug("registered consumer", "pattern", pattern)
	}
}

// GetConsumers returns the consumers matching routingKey, each once, in
// registration order.
func (r *ConsumerRegistry) GetConsumers(routingKey string) []EventConsumer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []EventConsumer
	seen := make(map[int]bool)
	for _, reg := range r.registrations {
		if seen[reg.id] || !MatchRoutingKey(reg.pattern, routingKey) {
			continue
		}
		seen[reg.id] = true
		out = append(out, reg.consumer)
	}
	return out
}

// Dispatch sends an event to every matching consumer. All consumers run even
// when one fails; the last error is returned.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *Event) error {
	consumers := r.GetConsumers(event.RoutingKey)
	if len(consumers) == 0 {
		r.logger.Debug("no consumers for event", "routing_key", event.RoutingKey)
		return nil
	}

	var lastErr error
	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			r.logger.Error("consumer failed to handle event",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"error", err,
			)
			lastErr = err
		}
	}
	return lastErr
}

// ConsumerCount returns the number of registrations.
func (r *ConsumerRegistry) ConsumerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.registrations)
}
