package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

// setupTestDB opens a migrated in-memory SQLite store.
func setupTestDB(t *testing.T) database.Connection {
	t.Helper()
	ctx := context.Background()
	conn, err := database.Open(ctx, database.Config{Driver: database.DriverSQLite, SQLitePath: sqlite.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))
	return conn
}

func TestStaffRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStaffRepository(setupTestDB(t))

	duy, err := domain.NewStaffMember("duy", "Nguyễn Văn Duy", domain.GroupA)
	require.NoError(t, err)
	hien, err := domain.NewStaffMember("hiền", "Trần Thị Thu Hiền", domain.GroupB)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, hien))
	require.NoError(t, repo.Save(ctx, duy))

	t.Run("list orders by group", func(t *testing.T) {
		members, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, members, 2)
		assert.Equal(t, duy, members[0])
		assert.Equal(t, hien, members[1])
	})

	t.Run("save updates existing member", func(t *testing.T) {
		renamed := duy
		renamed.FullName = "Nguyễn V. Duy"
		require.NoError(t, repo.Save(ctx, renamed))

		members, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, members, 2)
		assert.Equal(t, "Nguyễn V. Duy", members[0].FullName)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "DUY"))
		assert.ErrorIs(t, repo.Delete(ctx, "duy"), domain.ErrUnknownStaff)

		members, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, members, 1)
	})
}

func TestLeaveRepository_Dated(t *testing.T) {
	ctx := context.Background()
	repo := NewLeaveRepository(setupTestDB(t))
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	morning, err := domain.NewLeaveRecord("duy", day, domain.SessionMorning, "training")
	require.NoError(t, err)
	id, err := repo.Add(ctx, morning)
	require.NoError(t, err)
	assert.Positive(t, id)

	other, err := domain.NewLeaveRecord("lya", day.AddDate(0, 0, 1), domain.SessionFullDay, "")
	require.NoError(t, err)
	_, err = repo.Add(ctx, other)
	require.NoError(t, err)

	found, err := repo.FindForDate(ctx, "Duy", day)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, id, found[0].ID)
	assert.Equal(t, domain.SessionMorning, found[0].Session)
	assert.Equal(t, "training", found[0].Reason)
	assert.True(t, found[0].Date.Equal(day))
	assert.False(t, found[0].CreatedAt.IsZero())

	none, err := repo.FindForDate(ctx, "duy", day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "lya", all[0].StaffKey, "newest date first")

	require.NoError(t, repo.Delete(ctx, id))
	assert.ErrorIs(t, repo.Delete(ctx, id), domain.ErrLeaveNotFound)
}

func TestLeaveRepository_Weekly(t *testing.T) {
	ctx := context.Background()
	repo := NewLeaveRepository(setupTestDB(t))

	sunday, err := domain.NewWeeklyLeave("quân", 6, domain.SessionFullDay, "rest day")
	require.NoError(t, err)
	id, err := repo.AddWeekly(ctx, sunday)
	require.NoError(t, err)

	monday, err := domain.NewWeeklyLeave("quân", 0, domain.SessionAfternoon, "")
	require.NoError(t, err)
	_, err = repo.AddWeekly(ctx, monday)
	require.NoError(t, err)

	found, err := repo.FindWeekly(ctx, "QUÂN", 6)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "rest day", found[0].Reason)

	all, err := repo.ListWeekly(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 0, all[0].Weekday)

	require.NoError(t, repo.DeleteWeekly(ctx, id))
	assert.ErrorIs(t, repo.DeleteWeekly(ctx, id), domain.ErrLeaveNotFound)
}

func TestSettingsRepository(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	repo := NewSettingsRepository(conn)

	keys, err := repo.GetDisabledStaff(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, repo.SetDisabledStaff(ctx, []string{"Lya", "duy", "lya", " "}))
	keys, err = repo.GetDisabledStaff(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"duy", "lya"}, keys)

	require.NoError(t, repo.SetDisabledStaff(ctx, nil))
	keys, err = repo.GetDisabledStaff(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	t.Run("corrupt value reads as empty", func(t *testing.T) {
		_, err := conn.Exec(ctx, `UPDATE app_settings SET value = 'not json' WHERE key = ?`, disabledStaffKey)
		require.NoError(t, err)
		keys, err := repo.GetDisabledStaff(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)
	})
}
