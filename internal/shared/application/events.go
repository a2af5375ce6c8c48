package application

import "context"

// EventRecorder stores an integration event for later delivery. Recording
// through a transaction context ties the event to that transaction.
type EventRecorder interface {
	Record(ctx context.Context, routingKey string, payload any) error
}

// NoopEventRecorder discards events.
type NoopEventRecorder struct{}

// Record does nothing.
func (NoopEventRecorder) Record(context.Context, string, any) error { return nil }

// RecorderOrNoop returns r, or a NoopEventRecorder when r is nil.
func RecorderOrNoop(r EventRecorder) EventRecorder {
	if r == nil {
		return NoopEventRecorder{}
	}
	return r
}
