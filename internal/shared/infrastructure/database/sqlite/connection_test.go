package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/database"
)

func TestNewConnection_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "clinic.db")

	conn, err := database.Open(ctx, database.Config{Driver: database.DriverSQLite, SQLitePath: path})
	require.NoError(t, err)
	defer conn.Close()

	assert.NoError(t, conn.Ping(ctx))
	assert.Equal(t, database.DriverSQLite, conn.Driver())
	assert.FileExists(t, path)
}

func TestConnection_ExecAndQuery(t *testing.T) {
	ctx := context.Background()
	conn, err := NewConnection(ctx, database.Config{SQLitePath: MemoryPath})
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(ctx, `CREATE TABLE staff (short_name TEXT PRIMARY KEY, full_name TEXT NOT NULL)`)
	require.NoError(t, err)

	res, err := conn.Exec(ctx, `INSERT INTO staff (short_name, full_name) VALUES (?, ?), (?, ?)`,
		"duy", "Nguyễn Văn Duy", "lya", "H' Lya Niê")
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var name string
	require.NoError(t, conn.QueryRow(ctx, `SELECT full_name FROM staff WHERE short_name = ?`, "lya").Scan(&name))
	assert.Equal(t, "H' Lya Niê", name)

	err = conn.QueryRow(ctx, `SELECT full_name FROM staff WHERE short_name = ?`, "nobody").Scan(&name)
	assert.True(t, database.IsNoRows(err))

	rows, err := conn.Query(ctx, `SELECT short_name FROM staff ORDER BY short_name`)
	require.NoError(t, err)
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		require.NoError(t, rows.Scan(&k))
		keys = append(keys, k)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"duy", "lya"}, keys)
}

func TestUnitOfWork(t *testing.T) {
	ctx := context.Background()
	conn, err := NewConnection(ctx, database.Config{SQLitePath: MemoryPath})
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Exec(ctx, `CREATE TABLE app_settings (key TEXT PRIMARY KEY, value TEXT)`)
	require.NoError(t, err)

	count := func() int {
		var n int
		require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM app_settings`).Scan(&n))
		return n
	}

	t.Run("rollback discards writes", func(t *testing.T) {
		uow := database.NewUnitOfWork(conn)
		txCtx, err := uow.Begin(ctx)
		require.NoError(t, err)
		_, err = database.ExecutorFromContext(txCtx, conn).Exec(txCtx, `INSERT INTO app_settings VALUES ('a', '1')`)
		require.NoError(t, err)
		require.NoError(t, uow.Rollback(txCtx))
		assert.Equal(t, 0, count())
	})

	t.Run("nested begin joins outer transaction", func(t *testing.T) {
		uow := database.NewUnitOfWork(conn)
		outer, err := uow.Begin(ctx)
		require.NoError(t, err)
		inner, err := uow.Begin(outer)
		require.NoError(t, err)
		_, err = database.ExecutorFromContext(inner, conn).Exec(inner, `INSERT INTO app_settings VALUES ('b', '2')`)
		require.NoError(t, err)
		require.NoError(t, uow.Commit(inner))
		require.NoError(t, uow.Commit(outer))
		assert.Equal(t, 1, count())
	})

	t.Run("commit without transaction fails", func(t *testing.T) {
		assert.Error(t, database.NewUnitOfWork(conn).Commit(ctx))
	})
}
