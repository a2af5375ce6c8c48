// Package persistence stores the roster, leaves and settings in the shared
// database. The same SQL serves SQLite and PostgreSQL.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

// storeDateLayout is the on-disk date format for leaves.
const storeDateLayout = "2006-01-02"

// StaffRepository implements domain.StaffRepository.
type StaffRepository struct {
	conn database.Connection
}

// NewStaffRepository creates a staff repository on conn.
func NewStaffRepository(conn database.Connection) *StaffRepository {
	return &StaffRepository{conn: conn}
}

// Save inserts the member or updates its name and group.
func (r *StaffRepository) Save(ctx context.Context, m domain.StaffMember) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO staff (short_name, full_name, staff_group) VALUES (?, ?, ?)
		ON CONFLICT (short_name) DO UPDATE SET full_name = excluded.full_name, staff_group = excluded.staff_group`,
		m.Key, m.FullName, int(m.Group))
	if err != nil {
		return fmt.Errorf("save staff %s: %w", m.Key, err)
	}
	return nil
}

// Delete removes a member by short name.
func (r *StaffRepository) Delete(ctx context.Context, key string) error {
	key = domain.NormalizeKey(key)
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `DELETE FROM staff WHERE short_name = ?`, key)
	if err != nil {
		return fmt.Errorf("delete staff %s: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnknownStaff, key)
	}
	return nil
}

// List returns all members ordered by group then short name.
func (r *StaffRepository) List(ctx context.Context) ([]domain.StaffMember, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT short_name, full_name, staff_group FROM staff ORDER BY staff_group, short_name`)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	var members []domain.StaffMember
	for rows.Next() {
		var (
			key, name string
			group     int
		)
		if err := rows.Scan(&key, &name, &group); err != nil {
			return nil, err
		}
		g, err := domain.ParseGroup(group)
		if err != nil {
			return nil, fmt.Errorf("staff %s: %w", key, err)
		}
		members = append(members, domain.StaffMember{Key: key, FullName: name, Group: g})
	}
	return members, rows.Err()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
