package main

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/winterop-com/servicekit-sub001/config"
	"github.com/winterop-com/servicekit-sub001/db"
)

func newMigrateCmd(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage service database migrations",
	}

	openFromConfig := func() (*sql.DB, error) {
		cfg, err := config.Load(*cfgFile)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(cfg.DatabaseDSN, db.DuckDBPrefix) {
			return nil, fmt.Errorf("migrations are SQLite-only, got DuckDB DSN")
		}
		return db.Open(cfg.DatabaseDSN)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			sqldb, err := openFromConfig()
			if err != nil {
				return err
			}
			defer sqldb.Close()
			return db.RunMigrations(sqldb)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			sqldb, err := openFromConfig()
			if err != nil {
				return err
			}
			defer sqldb.Close()
			return db.RollbackMigration(sqldb)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			sqldb, err := openFromConfig()
			if err != nil {
				return err
			}
			defer sqldb.Close()
			return db.MigrationStatus(sqldb)
		},
	})

	return cmd
}
