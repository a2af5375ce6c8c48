package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

const disabledStaffKey = "disabled_staff"

// SettingsRepository implements domain.SettingsRepository on the
// app_settings key/value table.
type SettingsRepository struct {
	conn database.Connection
}

// NewSettingsRepository creates a settings repository on conn.
func NewSettingsRepository(conn database.Connection) *SettingsRepository {
	return &SettingsRepository{conn: conn}
}

// GetDisabledStaff returns the stored disabled keys. A missing or corrupt
// value reads as an empty list.
func (r *SettingsRepository) GetDisabledStaff(ctx context.Context) ([]string, error) {
	var raw string
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT value FROM app_settings WHERE key = ?`, disabledStaffKey).Scan(&raw)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read disabled staff: %w", err)
	}
	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, nil
	}
	return keys, nil
}

// SetDisabledStaff replaces the disabled list with the normalized, sorted
// unique keys.
func (r *SettingsRepository) SetDisabledStaff(ctx context.Context, keys []string) error {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k = domain.NormalizeKey(k); k != "" {
			set[k] = struct{}{}
		}
	}
	list := make([]string, 0, len(set))
	for k := range set {
		list = append(list, k)
	}
	sort.Strings(list)

	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	_, err = database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO app_settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		disabledStaffKey, string(raw))
	if err != nil {
		return fmt.Errorf("write disabled staff: %w", err)
	}
	return nil
}
