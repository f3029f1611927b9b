package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/homehub-core/internal/infrastructure/config"
	"github.com/nerrad567/homehub-core/internal/infrastructure/database"
	_ "github.com/nerrad567/homehub-core/migrations"
)

// NewMigrateCmd creates the migrate subcommand and its up, down and status
// children. None of them need token keys.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
		Long:  `Apply, roll back or list the embedded SQLite schema migrations.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrateUp,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recently applied migration",
		Args:  cobra.NoArgs,
		RunE:  runMigrateDown,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrateStatus,
	})

	return cmd
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	return withMigrationDB(cmd.Context(), func(db *database.DB) error {
		if err := db.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		cmd.Println("Migrations completed successfully")
		return nil
	})
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	return withMigrationDB(cmd.Context(), func(db *database.DB) error {
		applied, _, err := db.MigrationStatus(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading migration status: %w", err)
		}
		if len(applied) == 0 {
			cmd.Println("No migrations to roll back")
			return nil
		}

		if err := db.MigrateDown(cmd.Context()); err != nil {
			return fmt.Errorf("rolling back migration: %w", err)
		}
		cmd.Printf("Rolled back %s\n", applied[len(applied)-1].Version)
		return nil
	})
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	return withMigrationDB(cmd.Context(), func(db *database.DB) error {
		applied, pending, err := db.MigrationStatus(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading migration status: %w", err)
		}

		for _, r := range applied {
			cmd.Printf("applied  %s  %s\n", r.Version, r.AppliedAt.Format("2006-01-02 15:04:05"))
		}
		for _, m := range pending {
			cmd.Printf("pending  %s  %s\n", m.Version, m.Name)
		}
		cmd.Printf("%d applied, %d pending\n", len(applied), len(pending))
		return nil
	})
}

// withMigrationDB opens the configured database, runs fn and closes it.
func withMigrationDB(ctx context.Context, fn func(db *database.DB) error) error {
	cfg, err := config.Parse(resolveConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Database.Path == "" {
		return errors.New("database.path is required (set DATABASE_URL or HOMEHUB_DATABASE_PATH)")
	}

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db)
}
