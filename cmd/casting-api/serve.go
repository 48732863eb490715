package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casting-api/internal/auth"
	"casting-api/internal/config"
	"casting-api/internal/database"
	"casting-api/internal/http/client"
	"casting-api/internal/http/handler"
	"casting-api/internal/observability/logger"
	"casting-api/internal/ratelimit"
	"casting-api/internal/repo"
	"casting-api/internal/service"
	"casting-api/internal/telemetry"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the Casting API HTTP server with all middlewares and observability`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.OTELServiceName, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	log.Info(ctx, "starting casting api",
		logger.Module("main"),
		logger.Action("serve"),
		zap.String("service", cfg.OTELServiceName),
		zap.String("app_env", cfg.AppEnv),
	)

	// Run database migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info(ctx, "migrations completed successfully")

	// Telemetry is opt-in
	var metrics *telemetry.Metrics
	if cfg.TelemetryEnabled() {
		log.Info(ctx, "initializing telemetry", zap.String("endpoint", cfg.OTELExporterEndpoint))

		tp, err := telemetry.InitTracer(ctx, cfg.OTELServiceName, cfg.OTELExporterEndpoint, cfg.OTELSamplingRatio)
		if err != nil {
			log.Warn(ctx, "failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					log.Error(shutdownCtx, "failed to shutdown tracer provider", zap.Error(err))
				}
			}()
		}

		mp, m, err := telemetry.InitMetrics(ctx, cfg.OTELServiceName, cfg.OTELExporterEndpoint)
		if err != nil {
			log.Warn(ctx, "failed to initialize metrics, continuing without metrics", zap.Error(err))
		} else {
			metrics = m
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := mp.Shutdown(shutdownCtx); err != nil {
					log.Error(shutdownCtx, "failed to shutdown meter provider", zap.Error(err))
				}
			}()
		}
	} else {
		log.Info(ctx, "telemetry disabled")
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Info(ctx, "database connected")

	checks := map[string]handler.Pinger{"database": pool}

	// Redis is optional, without it requests are not rate limited
	var rateLimiter *ratelimit.RedisRateLimiter
	if cfg.RateLimitEnabled() {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}

		var rateLimitCounter metric.Int64Counter
		if metrics != nil {
			rateLimitCounter = metrics.RateLimitRejections
		}
		rateLimiter = ratelimit.NewRedisRateLimiter(redisClient, rateLimitCounter)
		checks["redis"] = rateLimiter
		log.Info(ctx, "redis connected", zap.Int("limit_per_min", cfg.RateLimitPerSubjectPerMin))
	}

	prom := telemetry.NewPromMetrics()
	guard := newGuard(cfg, prom, metrics)

	log.Info(ctx, "JWT authentication initialized",
		zap.String("issuer", cfg.Issuer()),
		zap.String("jwks_url", cfg.JWKSURL()),
		zap.Strings("algorithms", cfg.GetAlgorithms()),
		zap.Duration("jwks_cache_ttl", cfg.JWKSCacheTTL()),
	)

	// Initialize repositories
	auditRepo := repo.NewAuditRepo(pool)
	actorRepo := repo.NewActorRepository(pool)
	movieRepo := repo.NewMovieRepository(pool)

	// Initialize services
	actorService := service.NewActorService(actorRepo, auditRepo, log)
	movieService := service.NewMovieService(movieRepo, auditRepo, log)

	deps := RouterDeps{
		Cfg:           cfg,
		Log:           log,
		Guard:         guard,
		Metrics:       metrics,
		Prom:          prom,
		HealthHandler: handler.NewHealthHandler(checks),
		ActorHandler:  handler.NewActorHandler(actorService),
		MovieHandler:  handler.NewMovieHandler(movieService),
		DebugHandler:  handler.NewDebugHandler(cfg.AppEnv, pool),
	}
	if rateLimiter != nil {
		deps.RateLimiter = rateLimiter
	}
	r := buildRouter(deps)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting http server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-sigChan:
	}

	log.Info(ctx, "shutdown signal received, starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown error", zap.Error(err))
	}

	log.Info(shutdownCtx, "shutdown complete")
	return nil
}

// newKeySetCache builds the JWKS cache for the configured identity provider.
// prom may be nil.
func newKeySetCache(cfg *config.Config, prom *telemetry.PromMetrics) *auth.KeySetCache {
	keysCfg := auth.KeySetCacheConfig{
		URL:          cfg.JWKSURL(),
		Client:       client.NewCustomHTTPClient(cfg.JWKSFetchTimeout()),
		TTL:          cfg.JWKSCacheTTL(),
		FetchTimeout: cfg.JWKSFetchTimeout(),
		Retries:      cfg.JWKSFetchRetries,
	}
	if prom != nil {
		keysCfg.Fetches = prom.JWKSFetches
	}
	return auth.NewKeySetCache(keysCfg)
}

// newGuard wires the key set cache, the verifier and the guard
func newGuard(cfg *config.Config, prom *telemetry.PromMetrics, metrics *telemetry.Metrics) *auth.Guard {
	verifier := auth.NewVerifier(newKeySetCache(cfg, prom), auth.VerifierConfig{
		Audience:   cfg.Auth0Audience,
		Issuer:     cfg.Issuer(),
		Algorithms: cfg.GetAlgorithms(),
		Leeway:     cfg.ClockSkew(),
	})

	var rejections metric.Int64Counter
	if metrics != nil {
		rejections = metrics.AuthRejections
	}
	return auth.NewGuard(verifier, rejections)
}
