package database

import (
	"context"
	"fmt"
	"time"

	"casting-api/internal/observability/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	maxConnectAttempts = 3
	pingTimeout        = 5 * time.Second
)

// NewPool creates a new PostgreSQL connection pool, retrying the initial
// ping with exponential backoff.
func NewPool(ctx context.Context, databaseURL string, log *logger.Logger) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.HealthCheckPeriod = 1 * time.Minute
	config.MaxConnLifetime = 1 * time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	retryDelay := 1 * time.Second
	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		if err = Ping(ctx, pool); err == nil {
			return pool, nil
		}

		log.Warn(ctx, "database ping failed",
			logger.Module("database"),
			logger.Action("connect"),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt < maxConnectAttempts {
			select {
			case <-ctx.Done():
				pool.Close()
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
			retryDelay *= 2
		}
	}

	pool.Close()
	return nil, fmt.Errorf("failed to ping database after %d attempts: %w", maxConnectAttempts, err)
}

// Ping checks the pool with a bounded timeout. Used by /ready.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return pool.Ping(pingCtx)
}
