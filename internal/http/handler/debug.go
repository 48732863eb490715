package handler

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"casting-api/internal/auth"
	"casting-api/internal/config"
	"casting-api/internal/http/httperr"
	"casting-api/internal/observability/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// DBPool interface for database operations needed by debug endpoints
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// DebugHandler provides debug endpoints for development.
// Routes are mounted only when APP_ENV is dev; the handler checks again.
type DebugHandler struct {
	appEnv string
	pool   DBPool
}

// NewDebugHandler creates a new debug handler
func NewDebugHandler(appEnv string, pool DBPool) *DebugHandler {
	if appEnv == "" {
		appEnv = "production"
	}
	return &DebugHandler{
		appEnv: appEnv,
		pool:   pool,
	}
}

// DebugAuthResponse describes the verified token of the caller
type DebugAuthResponse struct {
	Subject        string                 `json:"subject"`
	Issuer         string                 `json:"issuer"`
	Permissions    []string               `json:"permissions"`
	HasPermissions bool                   `json:"has_permissions"`
	ClaimNames     []string               `json:"claim_names"`
	Claims         map[string]interface{} `json:"claims"`
}

func (h *DebugHandler) enabled(w http.ResponseWriter, r *http.Request) bool {
	if config.IsDevEnv(h.appEnv) {
		return true
	}

	ctx := r.Context()
	logger.GetLogger(ctx).Warn(ctx, "debug endpoint accessed in non-dev environment",
		logger.Module("debug"),
		logger.Action("guard"),
		zap.String("app_env", h.appEnv),
		zap.String("remote_addr", r.RemoteAddr),
	)
	httperr.NotFound404(w, ctx)
	return false
}

// GetAuthDebug returns the claims of the caller's token
// GET /debug/auth
func (h *DebugHandler) GetAuthDebug(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w, r) {
		return
	}

	ctx := r.Context()
	log := logger.GetLogger(ctx)

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, auth.MsgAuthHeaderMissing)
		return
	}

	perms, hasPerms := claims.Permissions()
	if perms == nil {
		perms = []string{}
	}

	names := make([]string, 0, len(claims))
	for name := range claims {
		names = append(names, name)
	}
	sort.Strings(names)

	log.Info(ctx, "debug auth endpoint accessed",
		logger.Module("debug"),
		logger.Action("auth"),
		zap.Int("permission_count", len(perms)),
	)

	writeJSON(w, http.StatusOK, DebugAuthResponse{
		Subject:        claims.Subject(),
		Issuer:         claims.Issuer(),
		Permissions:    perms,
		HasPermissions: hasPerms,
		ClaimNames:     names,
		Claims:         claims,
	})
}

// PingDB checks database connectivity by executing SELECT 1
// GET /debug/db/ping
func (h *DebugHandler) PingDB(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w, r) {
		return
	}

	ctx := r.Context()
	log := logger.GetLogger(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var result int
	err := h.pool.QueryRow(pingCtx, "SELECT 1").Scan(&result)
	if err != nil {
		logFields := []zap.Field{
			logger.Module("debug"),
			logger.Action("db_ping"),
			zap.Error(err),
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			logFields = append(logFields, zap.String("pgcode", pgErr.Code))
		}
		log.Error(ctx, "db_ping_failed", logFields...)

		logger.SetRootError(ctx, err)
		httperr.InternalError500(w, ctx, "database ping failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
