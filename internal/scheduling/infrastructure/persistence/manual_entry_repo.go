// Package persistence stores operator-entered appointments.
package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/database"
)

const listSeparator = "-"

// ManualEntryRepository implements domain.ManualEntryRepository.
type ManualEntryRepository struct {
	conn database.Connection
}

// NewManualEntryRepository creates a manual entry repository on conn.
func NewManualEntryRepository(conn database.Connection) *ManualEntryRepository {
	return &ManualEntryRepository{conn: conn}
}

// Save inserts the entry and returns its id.
func (r *ManualEntryRepository) Save(ctx context.Context, e domain.ManualEntry) (int64, error) {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	var id int64
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, `
		INSERT INTO manual_entries (patient_id, procedures, staff, appointment_date, appointment_time, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		e.PatientID,
		strings.Join(e.Procedures, listSeparator),
		strings.Join(e.Staff, listSeparator),
		e.Date.Format(domain.DateLayout),
		e.Time.String(),
		e.Notes,
		createdAt.UTC().Format(time.RFC3339),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save manual entry for %s: %w", e.PatientID, err)
	}
	return id, nil
}

// Delete removes an entry by id.
func (r *ManualEntryRepository) Delete(ctx context.Context, id int64) error {
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `DELETE FROM manual_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete manual entry %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %d", domain.ErrManualEntryNotFound, id)
	}
	return nil
}

// List returns all entries, newest first.
func (r *ManualEntryRepository) List(ctx context.Context) ([]domain.ManualEntry, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, `
		SELECT id, patient_id, procedures, staff, appointment_date, appointment_time, notes, created_at
		FROM manual_entries ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list manual entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.ManualEntry
	for rows.Next() {
		var (
			e                               domain.ManualEntry
			procs, staff, date, at, created string
		)
		if err := rows.Scan(&e.ID, &e.PatientID, &procs, &staff, &date, &at, &e.Notes, &created); err != nil {
			return nil, err
		}
		if e.Date, err = domain.ParseDate(date); err != nil {
			return nil, fmt.Errorf("manual entry %d: %w", e.ID, err)
		}
		if e.Time, err = domain.ParseClock(at); err != nil {
			return nil, fmt.Errorf("manual entry %d: %w", e.ID, err)
		}
		e.Procedures = splitList(procs)
		e.Staff = splitList(staff)
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, listSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
