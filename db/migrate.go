package db

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// EmbedMigrations contains the embedded SQL migration files.
//
//go:embed migrations/*.sql
var EmbedMigrations embed.FS

// RunMigrations executes all pending goose migrations against the service
// database. Only SQLite databases are migrated; DuckDB analytic databases
// carry no servicekit schema.
func RunMigrations(sqldb *sql.DB) error {
	goose.SetBaseFS(EmbedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(sqldb, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// MigrationStatus prints the goose migration status for the database.
func MigrationStatus(sqldb *sql.DB) error {
	goose.SetBaseFS(EmbedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Status(sqldb, "migrations"); err != nil {
		return fmt.Errorf("goose status: %w", err)
	}

	return nil
}

// RollbackMigration rolls back the most recent goose migration.
func RollbackMigration(sqldb *sql.DB) error {
	goose.SetBaseFS(EmbedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Down(sqldb, "migrations"); err != nil {
		return fmt.Errorf("goose down: %w", err)
	}

	return nil
}
