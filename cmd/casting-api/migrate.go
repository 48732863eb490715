package main

import (
	"fmt"

	"casting-api/internal/config"
	"casting-api/internal/database"

	"github.com/spf13/cobra"
)

var migrateDownSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Run all pending database migrations, or roll back the last N with --down`,
	RunE:  runMigrate,
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE:  runMigrateVersion,
}

func init() {
	migrateCmd.Flags().IntVar(&migrateDownSteps, "down", 0, "roll back this many migrations instead of migrating up")
	migrateCmd.AddCommand(migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if migrateDownSteps < 0 {
		return fmt.Errorf("--down must be positive, got %d", migrateDownSteps)
	}

	if migrateDownSteps > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Rolling back %d migration(s)...\n", migrateDownSteps)
		if err := database.RollbackMigrations(cfg.DatabaseURL, migrateDownSteps); err != nil {
			return fmt.Errorf("failed to roll back migrations: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Rollback completed successfully")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Migrations completed successfully")
	return nil
}

func runMigrateVersion(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	version, dirty, err := database.MigrationVersion(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
	return nil
}
