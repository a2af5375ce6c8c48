package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

// LeaveRepository implements domain.LeaveRepository.
type LeaveRepository struct {
	conn database.Connection
}

// NewLeaveRepository creates a leave repository on conn.
func NewLeaveRepository(conn database.Connection) *LeaveRepository {
	return &LeaveRepository{conn: conn}
}

const leaveColumns = `id, staff_short_name, leave_date, session, reason, created_at`

// Add stores a dated leave and returns its id.
func (r *LeaveRepository) Add(ctx context.Context, l domain.LeaveRecord) (int64, error) {
	var id int64
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, `
		INSERT INTO doctor_leaves (staff_short_name, leave_date, session, reason, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`,
		l.StaffKey, l.Date.Format(storeDateLayout), string(l.Session), l.Reason, formatTimestamp(l.CreatedAt),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add leave for %s: %w", l.StaffKey, err)
	}
	return id, nil
}

// Delete removes a dated leave.
func (r *LeaveRepository) Delete(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, `DELETE FROM doctor_leaves WHERE id = ?`, id)
}

// List returns every dated leave, newest date first.
func (r *LeaveRepository) List(ctx context.Context) ([]domain.LeaveRecord, error) {
	return r.queryLeaves(ctx, `SELECT `+leaveColumns+` FROM doctor_leaves ORDER BY leave_date DESC, staff_short_name`)
}

// FindForDate returns the leaves of one staff member on one date.
func (r *LeaveRepository) FindForDate(ctx context.Context, staffKey string, date time.Time) ([]domain.LeaveRecord, error) {
	return r.queryLeaves(ctx,
		`SELECT `+leaveColumns+` FROM doctor_leaves WHERE staff_short_name = ? AND leave_date = ? ORDER BY id`,
		domain.NormalizeKey(staffKey), date.Format(storeDateLayout))
}

func (r *LeaveRepository) queryLeaves(ctx context.Context, query string, args ...any) ([]domain.LeaveRecord, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leaves: %w", err)
	}
	defer rows.Close()

	var out []domain.LeaveRecord
	for rows.Next() {
		var (
			l                        domain.LeaveRecord
			date, session, createdAt string
		)
		if err := rows.Scan(&l.ID, &l.StaffKey, &date, &session, &l.Reason, &createdAt); err != nil {
			return nil, err
		}
		if l.Date, err = time.Parse(storeDateLayout, date); err != nil {
			return nil, fmt.Errorf("leave %d: bad date %q: %w", l.ID, date, err)
		}
		l.Session = domain.Session(session)
		l.CreatedAt = parseTimestamp(createdAt)
		out = append(out, l)
	}
	return out, rows.Err()
}

const weeklyColumns = `id, staff_short_name, day_of_week, session, reason, created_at`

// AddWeekly stores a recurring leave and returns its id.
func (r *LeaveRepository) AddWeekly(ctx context.Context, l domain.WeeklyLeave) (int64, error) {
	var id int64
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, `
		INSERT INTO weekly_leaves (staff_short_name, day_of_week, session, reason, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`,
		l.StaffKey, l.Weekday, string(l.Session), l.Reason, formatTimestamp(l.CreatedAt),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add weekly leave for %s: %w", l.StaffKey, err)
	}
	return id, nil
}

// DeleteWeekly removes a recurring leave.
func (r *LeaveRepository) DeleteWeekly(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, `DELETE FROM weekly_leaves WHERE id = ?`, id)
}

// ListWeekly returns every recurring leave ordered by weekday.
func (r *LeaveRepository) ListWeekly(ctx context.Context) ([]domain.WeeklyLeave, error) {
	return r.queryWeekly(ctx, `SELECT `+weeklyColumns+` FROM weekly_leaves ORDER BY day_of_week, staff_short_name`)
}

// FindWeekly returns the recurring leaves of one staff member on a weekday.
func (r *LeaveRepository) FindWeekly(ctx context.Context, staffKey string, weekday int) ([]domain.WeeklyLeave, error) {
	return r.queryWeekly(ctx,
		`SELECT `+weeklyColumns+` FROM weekly_leaves WHERE staff_short_name = ? AND day_of_week = ? ORDER BY id`,
		domain.NormalizeKey(staffKey), weekday)
}

func (r *LeaveRepository) queryWeekly(ctx context.Context, query string, args ...any) ([]domain.WeeklyLeave, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query weekly leaves: %w", err)
	}
	defer rows.Close()

	var out []domain.WeeklyLeave
	for rows.Next() {
		var (
			l                  domain.WeeklyLeave
			session, createdAt string
		)
		if err := rows.Scan(&l.ID, &l.StaffKey, &l.Weekday, &session, &l.Reason, &createdAt); err != nil {
			return nil, err
		}
		l.Session = domain.Session(session)
		l.CreatedAt = parseTimestamp(createdAt)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *LeaveRepository) deleteByID(ctx context.Context, query string, id int64) error {
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete leave %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %d", domain.ErrLeaveNotFound, id)
	}
	return nil
}
