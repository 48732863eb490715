package main

import (
	"context"
	"fmt"

	"casting-api/internal/config"
	"casting-api/internal/database"
	"casting-api/internal/observability/logger"
	"casting-api/internal/repo"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Prune old audit log entries",
	Long:  `Remove audit log entries older than AUDIT_RETENTION_DAYS from the database`,
	RunE:  runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.OTELServiceName, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info(ctx, "starting audit log cleanup",
		logger.Module("main"),
		logger.Action("cleanup"),
		zap.Int("retention_days", cfg.AuditRetentionDays),
	)

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	auditRepo := repo.NewAuditRepo(pool)

	rowsDeleted, err := auditRepo.DeleteOlderThan(ctx, cfg.AuditRetentionDays)
	if err != nil {
		log.Error(ctx, "cleanup failed", logger.Module("main"), logger.Action("cleanup"), zap.Error(err))
		return fmt.Errorf("failed to prune audit log: %w", err)
	}

	log.Info(ctx, "cleanup completed",
		logger.Module("main"),
		logger.Action("cleanup"),
		zap.Int64("rows_deleted", rowsDeleted),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleanup completed: %d audit entries removed\n", rowsDeleted)

	return nil
}
