package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/geokeeper/internal/common"
	"github.com/dmitrijs2005/geokeeper/internal/dbx"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestOpen_CreatesSchema(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "reminders.db")

	db, err := Open(ctx, dbx.DialectSQLite, dsn)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"reminders", "accounts", "sessions", "goose_db_version"} {
		require.True(t, tableExists(t, db, table), "expected table %s", table)
	}
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "reminders.db")

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db, dbx.DialectSQLite))
	require.NoError(t, RunMigrations(ctx, db, dbx.DialectSQLite), "second run must be a no-op")
	require.True(t, tableExists(t, db, "reminders"))
}

func TestOpen_InMemory(t *testing.T) {
	t.Parallel()

	db, err := Open(context.Background(), dbx.DialectSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO reminders (id, title, location) VALUES ('1', 't', 'l')`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM reminders`).Scan(&n))
	require.Equal(t, 1, n)
}

func TestOpen_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), dbx.Dialect("oracle"), "x")
	require.ErrorIs(t, err, common.ErrUnknownDriver)
}
