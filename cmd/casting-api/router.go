package main

import (
	"net/http"

	"casting-api/internal/auth"
	"casting-api/internal/config"
	"casting-api/internal/http/docs"
	"casting-api/internal/http/handler"
	"casting-api/internal/http/httperr"
	"casting-api/internal/http/middleware"
	"casting-api/internal/observability/logger"
	"casting-api/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// RouterDeps holds everything buildRouter needs
type RouterDeps struct {
	Cfg   *config.Config
	Log   *logger.Logger
	Guard *auth.Guard
	// RateLimiter is nil when REDIS_URL is not set
	RateLimiter middleware.Limiter
	Metrics     *telemetry.Metrics
	Prom        *telemetry.PromMetrics

	// Handlers
	HealthHandler *handler.HealthHandler
	ActorHandler  *handler.ActorHandler
	MovieHandler  *handler.MovieHandler
	DebugHandler  *handler.DebugHandler
}

// buildRouter builds the chi router with all middleware and routes
func buildRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Cfg.GetCORSOrigins(),
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(deps.Log))
	r.Use(middleware.RecoveryMiddleware(deps.Log))
	r.Use(telemetry.OTelMiddleware(deps.Cfg.OTELServiceName))
	if deps.Metrics != nil {
		r.Use(telemetry.MetricsMiddleware(deps.Metrics))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperr.NotFound404(w, r.Context())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperr.MethodNotAllowed405(w, r.Context())
	})

	// Public routes
	health := deps.HealthHandler
	if health == nil {
		health = handler.NewHealthHandler(nil)
	}
	r.Get("/", handler.Index)
	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)
	r.Get("/openapi.yaml", docs.OpenAPIHandler().ServeHTTP)
	r.Get("/docs", docs.ScalarDocsHandler("/openapi.yaml").ServeHTTP)

	if deps.Prom != nil {
		r.Method(http.MethodGet, "/metrics", deps.Prom.Handler(deps.Cfg.MetricsToken))
	}

	if deps.Guard == nil {
		return r
	}

	// protect wraps a resource route with the guard, then the per-subject limiter
	protect := func(perm auth.Permission) chi.Router {
		mws := chi.Middlewares{deps.Guard.Require(perm)}
		if deps.RateLimiter != nil {
			mws = append(mws, middleware.RateLimitMiddleware(deps.RateLimiter, deps.Cfg.RateLimitPerSubjectPerMin))
		}
		return r.With(mws...)
	}

	// Debug routes (dev-only)
	if deps.Cfg.IsDev() && deps.DebugHandler != nil {
		protect(auth.PermNone).Get("/debug/auth", deps.DebugHandler.GetAuthDebug)
		protect(auth.PermNone).Get("/debug/db/ping", deps.DebugHandler.PingDB)
	}

	// Actors
	if deps.ActorHandler != nil {
		protect(auth.PermViewActors).Get("/actors", deps.ActorHandler.ListActors)
		protect(auth.PermAddActor).Post("/actors", deps.ActorHandler.CreateActor)
		protect(auth.PermUpdateActor).Patch("/actors/{actorId:[0-9]+}", deps.ActorHandler.UpdateActor)
		protect(auth.PermDeleteActor).Delete("/actors/{actorId:[0-9]+}", deps.ActorHandler.DeleteActor)
	}

	// Movies
	if deps.MovieHandler != nil {
		protect(auth.PermViewMovies).Get("/movies", deps.MovieHandler.ListMovies)
		protect(auth.PermAddMovie).Post("/movies", deps.MovieHandler.CreateMovie)
		protect(auth.PermUpdateMovie).Patch("/movies/{movieId:[0-9]+}", deps.MovieHandler.UpdateMovie)
		protect(auth.PermDeleteMovie).Delete("/movies/{movieId:[0-9]+}", deps.MovieHandler.DeleteMovie)
	}

	return r
}
