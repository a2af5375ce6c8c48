package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/database"
)

// ErrMessageNotFound is returned when an id matches no message.
var ErrMessageNotFound = errors.New("outbox message not found")

// Timestamps are stored as RFC 3339 UTC text so that string order is time
// order on both stores. Unset timestamps are empty strings.
const storeTimeLayout = time.RFC3339

const messageColumns = `id, event_id, routing_key, payload, created_at, published_at,
	retry_count, next_retry_at, last_error, dead_lettered_at, dead_letter_reason`

// SQLRepository implements Repository on the shared store.
type SQLRepository struct {
	conn database.Connection
}

// NewSQLRepository creates an outbox repository on conn.
func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn}
}

func (r *SQLRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

// Save stores a new message and sets its id.
func (r *SQLRepository) Save(ctx context.Context, msg *Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	err := r.exec(ctx).QueryRow(ctx, `
		INSERT INTO outbox_events (event_id, routing_key, payload, created_at)
		VALUES (?, ?, ?, ?) RETURNING id`,
		msg.EventID.String(), msg.RoutingKey, string(msg.Payload), formatTime(msg.CreatedAt),
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("save outbox event %s: %w", msg.RoutingKey, err)
	}
	return nil
}

// GetUnpublished returns undelivered, live messages whose retry time has come.
func (r *SQLRepository) GetUnpublished(ctx context.Context, now time.Time, limit int) ([]*Message, error) {
	return r.query(ctx, `SELECT `+messageColumns+` FROM outbox_events
		WHERE published_at = '' AND dead_lettered_at = ''
		  AND (next_retry_at = '' OR next_retry_at <= ?)
		ORDER BY id LIMIT ?`, formatTime(now), limit)
}

// GetDead returns dead-lettered messages, newest first.
func (r *SQLRepository) GetDead(ctx context.Context, limit int) ([]*Message, error) {
	return r.query(ctx, `SELECT `+messageColumns+` FROM outbox_events
		WHERE dead_lettered_at <> '' ORDER BY id DESC LIMIT ?`, limit)
}

// MarkPublished records a successful delivery.
func (r *SQLRepository) MarkPublished(ctx context.Context, id int64) error {
	return r.update(ctx, id, `UPDATE outbox_events SET published_at = ?, last_error = '' WHERE id = ?`,
		formatTime(time.Now()), id)
}

// MarkFailed counts a failed attempt and schedules the next one.
func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	return r.update(ctx, id, `UPDATE outbox_events
		SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ? WHERE id = ?`,
		errMsg, formatTime(nextRetryAt), id)
}

// MarkDead stops delivery attempts for a message.
func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	return r.update(ctx, id, `UPDATE outbox_events
		SET retry_count = retry_count + 1, dead_lettered_at = ?, dead_letter_reason = ?, last_error = ? WHERE id = ?`,
		formatTime(time.Now()), reason, reason, id)
}

// Requeue resets a dead-lettered message to a fresh pending state.
func (r *SQLRepository) Requeue(ctx context.Context, id int64) error {
	return r.update(ctx, id, `UPDATE outbox_events
		SET dead_lettered_at = '', dead_letter_reason = '', retry_count = 0, next_retry_at = ''
		WHERE id = ? AND dead_lettered_at <> ''`, id)
}

// DeleteOld removes published messages created before cutoff.
func (r *SQLRepository) DeleteOld(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.exec(ctx).Exec(ctx,
		`DELETE FROM outbox_events WHERE published_at <> '' AND created_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete old outbox events: %w", err)
	}
	return res.RowsAffected()
}

// Counts returns the pending, published and dead totals.
func (r *SQLRepository) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := r.exec(ctx).QueryRow(ctx, `SELECT
		COALESCE(SUM(CASE WHEN published_at = '' AND dead_lettered_at = '' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN published_at <> '' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN dead_lettered_at <> '' THEN 1 ELSE 0 END), 0)
		FROM outbox_events`).Scan(&c.Pending, &c.Published, &c.Dead)
	if err != nil {
		return Counts{}, fmt.Errorf("count outbox events: %w", err)
	}
	return c, nil
}

func (r *SQLRepository) update(ctx context.Context, id int64, query string, args ...any) error {
	res, err := r.exec(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update outbox event %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %d", ErrMessageNotFound, id)
	}
	return nil
}

func (r *SQLRepository) query(ctx context.Context, query string, args ...any) ([]*Message, error) {
	rows, err := r.exec(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		var (
			m                                    Message
			eventID, payload, created            string
			published, nextRetry, deadLetteredAt string
		)
		if err := rows.Scan(&m.ID, &eventID, &m.RoutingKey, &payload, &created, &published,
			&m.RetryCount, &nextRetry, &m.LastError, &deadLetteredAt, &m.DeadLetterReason); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		if m.EventID, err = uuid.Parse(eventID); err != nil {
			return nil, fmt.Errorf("outbox event %d: %w", m.ID, err)
		}
		m.Payload = json.RawMessage(payload)
		m.CreatedAt, _ = time.Parse(storeTimeLayout, created)
		m.PublishedAt = parseOptionalTime(published)
		m.NextRetryAt = parseOptionalTime(nextRetry)
		m.DeadLetteredAt = parseOptionalTime(deadLetteredAt)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(storeTimeLayout)
}

func parseOptionalTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(storeTimeLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
