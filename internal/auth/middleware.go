package auth

import (
	"context"
	"net/http"
	"strings"

	"casting-api/internal/http/httperr"
	"casting-api/internal/observability/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// Guard composes token verification and the permission check into a
// per-route middleware.
type Guard struct {
	verifier   TokenVerifier
	rejections metric.Int64Counter
}

// NewGuard creates a new Guard. rejections may be nil.
func NewGuard(verifier TokenVerifier, rejections metric.Int64Counter) *Guard {
	return &Guard{
		verifier:   verifier,
		rejections: rejections,
	}
}

// Require returns a middleware that lets a request through only when it
// carries a valid bearer token granting required. PermNone still demands
// a valid token.
func (g *Guard) Require(required Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.GetLogger(ctx)

			claims, err := g.Authorize(r, required)
			if err != nil {
				authErr, ok := IsAuthError(err)
				if !ok {
					authErr = NewAuthError(KindTokenInvalid, MsgTokenInvalid, err)
				}

				log.Warn(ctx, "authentication failed",
					logger.Module("auth"),
					logger.Action("authorize"),
					zap.String("auth_failure_reason", string(authErr.Kind())),
					zap.String("required_permission", string(required)),
					zap.String("token_prefix", maskToken(rawToken(r))),
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Error(authErr),
				)

				if g.rejections != nil {
					g.rejections.Add(ctx, 1, metric.WithAttributes(
						attribute.String("reason", string(authErr.Kind())),
					))
				}

				httperr.WriteStatusError(w, authErr)
				return
			}

			ctx = context.WithValue(ctx, claimsContextKey, claims)
			ctx = logger.SetUserIDInContext(ctx, claims.Subject())

			log.Debug(ctx, "authorized request",
				logger.Module("auth"),
				logger.Action("authorize"),
				zap.String("required_permission", string(required)),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize runs the header, token and permission checks for r
func (g *Guard) Authorize(r *http.Request, required Permission) (Claims, error) {
	token, err := ExtractBearerToken(r)
	if err != nil {
		return nil, err
	}

	claims, err := g.verifier.Verify(r.Context(), token)
	if err != nil {
		return nil, err
	}

	if err := CheckPermissions(required, claims); err != nil {
		return nil, err
	}

	return claims, nil
}

// ExtractBearerToken reads the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func ExtractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", NewAuthError(KindAuthHeaderMissing, MsgAuthHeaderMissing, nil)
	}

	parts := strings.Fields(header)
	switch {
	case len(parts) == 0 || !strings.EqualFold(parts[0], "bearer"):
		return "", NewAuthError(KindAuthHeaderMalformed, MsgAuthHeaderNotBearer, nil)
	case len(parts) == 1:
		return "", NewAuthError(KindAuthHeaderMalformed, MsgAuthHeaderNoToken, nil)
	case len(parts) > 2:
		return "", NewAuthError(KindAuthHeaderMalformed, MsgAuthHeaderNotSingle, nil)
	}

	return parts[1], nil
}

// rawToken returns whatever follows the scheme, for masked logging only
func rawToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// GetClaims retrieves the verified claims stored by Guard.Require
func GetClaims(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(Claims)
	return claims, ok
}
