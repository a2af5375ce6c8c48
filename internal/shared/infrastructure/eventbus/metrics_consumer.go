package eventbus

import (
	"context"

	"github.com/felixgeelhaar/clinicflow/pkg/observability"
)

// NewMetricsConsumer counts every delivered event by routing key.
func NewMetricsConsumer(metrics observability.Metrics) EventConsumer {
	return ConsumerFunc{
		Types: []string{"#"},
		Fn: func(_ context.Context, event *Event) error {
			metrics.Counter(observability.MetricEventsDelivered, 1, observability.T("routing_key", event.RoutingKey))
			return nil
		},
	}
}
