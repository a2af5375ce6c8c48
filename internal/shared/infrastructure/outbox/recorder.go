package outbox

import (
	"context"

	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/clinicflow/pkg/observability"
)

// Recorder stores events in the outbox. Called inside a unit of work, the
// event commits or rolls back with the change that raised it.
type Recorder struct {
	repo    Repository
	metrics observability.Metrics
}

// NewRecorder creates a Recorder on repo.
func NewRecorder(repo Repository, metrics observability.Metrics) *Recorder {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Recorder{repo: repo, metrics: metrics}
}

// Record wraps payload in an event envelope and saves it.
func (r *Recorder) Record(ctx context.Context, routingKey string, payload any) error {
	event, err := eventbus.NewEvent(ctx, routingKey, payload)
	if err != nil {
		return err
	}
	msg, err := NewMessage(event)
	if err != nil {
		return err
	}
	if err := r.repo.Save(ctx, msg); err != nil {
		return err
	}
	r.metrics.Counter(observability.MetricEventsRecorded, 1, observability.T("routing_key", routingKey))
	return nil
}
