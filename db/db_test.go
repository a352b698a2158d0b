package db

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteMemory(t *testing.T) {
	sqldb, err := OpenSQLiteMemory()
	require.NoError(t, err)
	defer sqldb.Close()

	_, err = sqldb.Exec(`CREATE TABLE t (v TEXT)`)
	require.NoError(t, err)
	_, err = sqldb.Exec(`INSERT INTO t VALUES ('x')`)
	require.NoError(t, err)

	var v string
	require.NoError(t, sqldb.QueryRow(`SELECT v FROM t`).Scan(&v))
	assert.Equal(t, "x", v)
}

func TestOpenSQLite_InvalidMode(t *testing.T) {
	_, err := OpenSQLite("ignored.db", "bogus", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid SQLite mode")
}

func TestOpenSQLite_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	writeDB, err := OpenSQLite(path, "write", 0)
	require.NoError(t, err)
	defer writeDB.Close()

	_, err = writeDB.Exec(`CREATE TABLE t (v INTEGER)`)
	require.NoError(t, err)

	readDB, err := OpenSQLite(path, "read", 2)
	require.NoError(t, err)
	defer readDB.Close()

	var n int
	require.NoError(t, readDB.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestOpen_DispatchesOnDSN(t *testing.T) {
	sqldb, err := Open("")
	require.NoError(t, err)
	defer sqldb.Close()

	// SQLite pragma answers; DuckDB would error here.
	var mode string
	require.NoError(t, sqldb.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.True(t, strings.EqualFold(mode, "memory") || strings.EqualFold(mode, "wal"))
}

func TestRunMigrations(t *testing.T) {
	sqldb, err := OpenSQLiteMemory()
	require.NoError(t, err)
	defer sqldb.Close()

	require.NoError(t, RunMigrations(sqldb))

	ctx := context.Background()
	_, err = sqldb.ExecContext(ctx,
		`INSERT INTO job_history (id, status, submitted_at) VALUES ('01ABC', 'completed', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	var status string
	require.NoError(t, sqldb.QueryRowContext(ctx,
		`SELECT status FROM job_history WHERE id = '01ABC'`).Scan(&status))
	assert.Equal(t, "completed", status)

	// Migrations are idempotent.
	require.NoError(t, RunMigrations(sqldb))
}

func TestRollbackMigration(t *testing.T) {
	sqldb, err := OpenSQLiteMemory()
	require.NoError(t, err)
	defer sqldb.Close()

	require.NoError(t, RunMigrations(sqldb))
	require.NoError(t, RollbackMigration(sqldb))

	_, err = sqldb.Exec(`SELECT 1 FROM job_history`)
	require.Error(t, err)
}
