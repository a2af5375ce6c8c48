package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/migrations"
)

func setupTestDB(t *testing.T) database.Connection {
	t.Helper()
	ctx := context.Background()
	conn, err := database.Open(ctx, database.Config{Driver: database.DriverSQLite, SQLitePath: sqlite.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))
	return conn
}

func TestManualEntryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewManualEntryRepository(setupTestDB(t))

	first := domain.ManualEntry{
		PatientID:  "BN001",
		Procedures: []string{"điện", "thủy", "xoa", "giác"},
		Staff:      domain.Lineup{"duy", "hiền", "lya"},
		Date:       time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		Time:       domain.NewClock(8, 5),
		Notes:      "walk-in",
		CreatedAt:  time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC),
	}
	second := first
	second.PatientID = "BN002"
	second.Notes = ""
	second.CreatedAt = first.CreatedAt.Add(time.Hour)

	id1, err := repo.Save(ctx, first)
	require.NoError(t, err)
	id2, err := repo.Save(ctx, second)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	t.Run("list newest first", func(t *testing.T) {
		entries, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, id2, entries[0].ID)

		got := entries[1]
		first.ID = id1
		assert.Equal(t, first, got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, id2))
		assert.ErrorIs(t, repo.Delete(ctx, id2), domain.ErrManualEntryNotFound)

		entries, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}
