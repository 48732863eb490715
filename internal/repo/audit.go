package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"casting-api/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepo handles audit log storage
type AuditRepo struct {
	pool *pgxpool.Pool
}

// NewAuditRepo creates a new AuditRepo
func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// LogAction logs an action to the audit log
func (r *AuditRepo) LogAction(ctx context.Context, entry domain.AuditEntry) error {
	var metadataJSON []byte
	var err error

	if entry.Metadata != nil {
		metadataJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	var requestID *string
	if entry.RequestID != "" {
		requestID = &entry.RequestID
	}

	query := `
		INSERT INTO audit_log (
			subject, action, resource_type, resource_id, metadata, request_id
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.pool.Exec(ctx, query,
		entry.Subject, entry.Action, entry.ResourceType, entry.ResourceID,
		metadataJSON, requestID,
	)
	if err != nil {
		return fmt.Errorf("failed to log action: %w", err)
	}

	return nil
}

// DeleteOlderThan prunes entries older than days and returns the count removed
func (r *AuditRepo) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM audit_log WHERE created_at < now() - make_interval(days => $1)`,
		days,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit log: %w", err)
	}
	return tag.RowsAffected(), nil
}
