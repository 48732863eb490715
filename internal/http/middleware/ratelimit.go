package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"casting-api/internal/auth"
	"casting-api/internal/http/httperr"
	"casting-api/internal/observability/logger"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const rateLimitWindowSeconds = 60

// Limiter decides whether a key may make another request in the window
type Limiter interface {
	AllowRequest(ctx context.Context, key string, limit int, windowSeconds int) (bool, int, error)
}

// RateLimitMiddleware enforces a per-subject request budget. It must run
// after the auth guard, requests without claims pass through.
func RateLimitMiddleware(limiter Limiter, limitPerMin int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			claims, ok := auth.GetClaims(ctx)
			if !ok || claims.Subject() == "" {
				next.ServeHTTP(w, r)
				return
			}
			subject := claims.Subject()

			log := logger.GetLogger(ctx)

			allowed, remaining, err := limiter.AllowRequest(ctx, subject, limitPerMin, rateLimitWindowSeconds)
			if err != nil {
				// Fail open
				log.Error(ctx, "rate limit check failed",
					logger.Module("ratelimit"),
					logger.Action("allow_request"),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limitPerMin))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(rateLimitWindowSeconds*time.Second).Unix()))

			if !allowed {
				span := trace.SpanFromContext(ctx)
				span.AddEvent("rate_limit_exceeded")

				log.Warn(ctx, "rate limit exceeded",
					logger.Module("ratelimit"),
					logger.Action("allow_request"),
					zap.String("subject", subject),
					zap.Int("limit", limitPerMin),
				)

				w.Header().Set("Retry-After", strconv.Itoa(rateLimitWindowSeconds))
				httperr.TooManyRequests429(w, ctx)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
