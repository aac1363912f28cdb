package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tendant/voicehub/pkg/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration commands",
	Long:  `Commands for applying and inspecting the embedded schema migrations.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *sql.DB) error {
			return migrateUp(cmd.Context(), db)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations",
	Long:  `Rolls back the given number of migrations (default 1).`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid steps %q: %w", args[0], err)
			}
			steps = n
		}

		return withDB(func(db *sql.DB) error {
			return withMigrator(cmd.Context(), db, func(m *repository.Migrator) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				logger.Info("migrations rolled back", "steps", steps)
				return nil
			})
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *sql.DB) error {
			return withMigrator(cmd.Context(), db, func(m *repository.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return fmt.Errorf("failed to read version: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version: %d dirty: %t\n", version, dirty)
				return nil
			})
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func withDB(fn func(db *sql.DB) error) error {
	db, err := repository.NewDB(dbConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	return fn(db)
}

func withMigrator(ctx context.Context, db *sql.DB, fn func(m *repository.Migrator) error) error {
	m, err := repository.NewMigrator(ctx, db, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn("failed to close migrator", "error", err)
		}
	}()
	return fn(m)
}

func migrateUp(ctx context.Context, db *sql.DB) error {
	return withMigrator(ctx, db, func(m *repository.Migrator) error {
		if err := m.Up(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		return nil
	})
}
