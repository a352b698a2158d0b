// Package db provides database connectivity helpers and migration support
// for servicekit services. SQLite is the default engine; DuckDB is
// available for analytic workloads via a "duckdb:" DSN prefix.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"
)

// SQLite DSN parameters for production hardening.
const (
	defaultBusyTimeout = "5000" // 5 seconds
	defaultSynchronous = "NORMAL"
	defaultJournalMode = "WAL"
)

// DuckDBPrefix marks a DSN as a DuckDB database path.
const DuckDBPrefix = "duckdb:"

// Open opens a database from a servicekit DSN. An empty DSN opens an
// in-memory SQLite database; a DSN with the "duckdb:" prefix opens DuckDB
// at the remaining path; anything else is treated as a SQLite file path.
func Open(dsn string) (*sql.DB, error) {
	if strings.HasPrefix(dsn, DuckDBPrefix) {
		return OpenDuckDB(strings.TrimPrefix(dsn, DuckDBPrefix))
	}
	if dsn == "" || dsn == ":memory:" {
		return OpenSQLiteMemory()
	}
	return OpenSQLite(dsn, "write", 0)
}

// OpenSQLiteMemory opens a single-connection in-memory SQLite database.
// MaxOpenConns must be 1 so that every query sees the same database.
func OpenSQLiteMemory() (*sql.DB, error) {
	sqldb, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	if err := ping(sqldb); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return sqldb, nil
}

// OpenSQLite opens a *sql.DB pool for the given SQLite file path.
//
// mode controls write-safety and pool sizing:
//   - "write": MaxOpenConns=1, MaxIdleConns=1, includes _txlock=immediate
//   - "read":  MaxOpenConns=maxOpen (use 0 for default of 4), no _txlock
//
// Both modes set WAL journal, busy_timeout=5000ms, synchronous=NORMAL,
// and foreign_keys=on.
func OpenSQLite(path string, mode string, maxOpen int) (*sql.DB, error) {
	if mode != "read" && mode != "write" {
		return nil, fmt.Errorf("invalid SQLite mode %q: must be \"read\" or \"write\"", mode)
	}

	sqldb, err := sql.Open("sqlite3", buildDSN(path, mode))
	if err != nil {
		return nil, fmt.Errorf("open sqlite (%s): %w", mode, err)
	}

	switch mode {
	case "write":
		sqldb.SetMaxOpenConns(1)
		sqldb.SetMaxIdleConns(1)
	case "read":
		if maxOpen <= 0 {
			maxOpen = 4
		}
		sqldb.SetMaxOpenConns(maxOpen)
		sqldb.SetMaxIdleConns(maxOpen)
	}
	sqldb.SetConnMaxLifetime(time.Hour)

	if err := ping(sqldb); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("sqlite (%s): %w", mode, err)
	}

	return sqldb, nil
}

// OpenDuckDB opens a DuckDB database at the given path (empty for
// in-memory).
func OpenDuckDB(path string) (*sql.DB, error) {
	sqldb, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := ping(sqldb); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("duckdb: %w", err)
	}
	return sqldb, nil
}

func ping(sqldb *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqldb.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// buildDSN constructs a SQLite DSN with hardened parameters.
func buildDSN(path string, mode string) string {
	params := url.Values{}
	params.Set("_journal_mode", defaultJournalMode)
	params.Set("_busy_timeout", defaultBusyTimeout)
	params.Set("_synchronous", defaultSynchronous)
	params.Set("_foreign_keys", "on")

	if mode == "write" {
		params.Set("_txlock", "immediate")
	}

	return path + "?" + params.Encode()
}
