package outbox

import (
	"context"
	"time"
)

// Counts summarizes the outbox.
type Counts struct {
	Pending   int64
	Published int64
	Dead      int64
}

// Repository persists outbox messages.
type Repository interface {
	// Save stores a new message, joining the transaction carried by ctx.
	Save(ctx context.Context, msg *Message) error

	// GetUnpublished returns messages due for delivery at now, oldest first.
	GetUnpublished(ctx context.Context, now time.Time, limit int) ([]*Message, error)

	// GetDead returns dead-lettered messages, newest first.
	GetDead(ctx context.Context, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id int64, reason string) error

	// Requeue clears the dead-letter state of a message so it is retried.
	Requeue(ctx context.Context, id int64) error

	// DeleteOld removes published messages created before cutoff.
	DeleteOld(ctx context.Context, cutoff time.Time) (int64, error)

	Counts(ctx context.Context) (Counts, error)
}
