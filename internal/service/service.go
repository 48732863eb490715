package service

import (
	"context"
	"errors"

	"casting-api/internal/domain"
	"casting-api/internal/observability/logger"

	"go.uber.org/zap"
)

// ErrWriteFailed wraps store failures on create and update, which the
// API reports as 422.
var ErrWriteFailed = errors.New("store rejected the write")

// AuditLogger records successful mutations
type AuditLogger interface {
	LogAction(ctx context.Context, entry domain.AuditEntry) error
}

// recordAudit writes entry. Failures are logged and never returned.
func recordAudit(ctx context.Context, audit AuditLogger, log *logger.Logger, entry domain.AuditEntry) {
	if audit == nil {
		return
	}

	entry.RequestID = logger.GetRequestIDFromContext(ctx)
	if err := audit.LogAction(ctx, entry); err != nil {
		log.Error(ctx, "failed to write audit log",
			logger.Module(entry.ResourceType),
			logger.Action("audit"),
			zap.String("audit_action", entry.Action),
			zap.Int64("resource_id", entry.ResourceID),
			zap.Error(err),
		)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrActorNotFound) || errors.Is(err, ErrMovieNotFound)
}
