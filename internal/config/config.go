package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// asymmetricAlgorithms lists the JWS algorithms accepted in JWT_ALGORITHMS.
// HMAC and "none" are never accepted to rule out key-confusion attacks.
var asymmetricAlgorithms = map[string]bool{
	"RS256": true, "RS384": true, "RS512": true,
	"PS256": true, "PS384": true, "PS512": true,
	"ES256": true, "ES384": true, "ES512": true,
	"EdDSA": true,
}

// Config holds all application configuration
type Config struct {
	// Identity provider
	Auth0Domain         string `env:"AUTH0_DOMAIN,required"`             // e.g. "casting.eu.auth0.com"
	Auth0Audience       string `env:"AUTH0_API_AUDIENCE,required"`       // Expected JWT audience
	JWTAlgorithms       string `env:"JWT_ALGORITHMS" envDefault:"RS256"` // CSV allow-list
	JWTClockSkewSeconds int    `env:"JWT_CLOCK_SKEW_SECONDS" envDefault:"0"`

	// JWKS fetching
	JWKSCacheTTLSeconds     int `env:"JWKS_CACHE_TTL_SECONDS" envDefault:"300"` // 0 disables caching
	JWKSFetchTimeoutSeconds int `env:"JWKS_FETCH_TIMEOUT_SECONDS" envDefault:"5"`
	JWKSFetchRetries        int `env:"JWKS_FETCH_RETRIES" envDefault:"1"`

	// Database
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Redis (optional, enables rate limiting)
	RedisURL                  string `env:"REDIS_URL"`
	RateLimitPerSubjectPerMin int    `env:"RATE_LIMIT_PER_SUBJECT_PER_MIN" envDefault:"120"`

	// Audit
	AuditRetentionDays int `env:"AUDIT_RETENTION_DAYS" envDefault:"90"`

	// OpenTelemetry
	OTELEnabled          bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELExporterEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTELServiceName      string  `env:"OTEL_SERVICE_NAME" envDefault:"casting-api"`
	OTELSamplingRatio    float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"0.1"`

	// Server
	Port               string `env:"PORT" envDefault:"5000"`
	AppEnv             string `env:"APP_ENV" envDefault:"production"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	MetricsToken       string `env:"METRICS_TOKEN"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate performs custom validation on the configuration
func (c *Config) Validate() error {
	c.Auth0Domain = normalizeDomain(c.Auth0Domain)
	if c.Auth0Domain == "" {
		return fmt.Errorf("AUTH0_DOMAIN is required")
	}

	if c.Auth0Audience == "" {
		return fmt.Errorf("AUTH0_API_AUDIENCE is required")
	}

	algs := c.GetAlgorithms()
	if len(algs) == 0 {
		return fmt.Errorf("JWT_ALGORITHMS must contain at least one algorithm")
	}
	for _, alg := range algs {
		if !asymmetricAlgorithms[alg] {
			return fmt.Errorf("JWT_ALGORITHMS contains %q: only asymmetric algorithms are allowed", alg)
		}
	}

	if c.JWTClockSkewSeconds < 0 {
		return fmt.Errorf("JWT_CLOCK_SKEW_SECONDS must be non-negative")
	}

	if c.JWKSCacheTTLSeconds < 0 {
		return fmt.Errorf("JWKS_CACHE_TTL_SECONDS must be non-negative")
	}

	if c.JWKSFetchTimeoutSeconds <= 0 {
		return fmt.Errorf("JWKS_FETCH_TIMEOUT_SECONDS must be positive")
	}

	if c.JWKSFetchRetries < 0 || c.JWKSFetchRetries > 5 {
		return fmt.Errorf("JWKS_FETCH_RETRIES must be between 0 and 5")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.RateLimitPerSubjectPerMin <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_SUBJECT_PER_MIN must be positive")
	}

	if c.AuditRetentionDays <= 0 {
		return fmt.Errorf("AUDIT_RETENTION_DAYS must be positive")
	}

	if c.OTELSamplingRatio < 0 || c.OTELSamplingRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLING_RATIO must be between 0 and 1")
	}

	return nil
}

// Issuer returns the expected "iss" claim, e.g. "https://casting.eu.auth0.com/"
func (c *Config) Issuer() string {
	return "https://" + c.Auth0Domain + "/"
}

// JWKSURL returns the identity provider's key set endpoint
func (c *Config) JWKSURL() string {
	return "https://" + c.Auth0Domain + "/.well-known/jwks.json"
}

// GetAlgorithms returns the allow-listed signing algorithms
func (c *Config) GetAlgorithms() []string {
	return splitCSV(c.JWTAlgorithms)
}

// GetCORSOrigins returns the allowed CORS origins
func (c *Config) GetCORSOrigins() []string {
	return splitCSV(c.CORSAllowedOrigins)
}

// ClockSkew returns the leeway applied to time based claims
func (c *Config) ClockSkew() time.Duration {
	return time.Duration(c.JWTClockSkewSeconds) * time.Second
}

// JWKSCacheTTL returns how long a fetched key set may be served
func (c *Config) JWKSCacheTTL() time.Duration {
	return time.Duration(c.JWKSCacheTTLSeconds) * time.Second
}

// JWKSFetchTimeout returns the timeout of a single key set fetch attempt
func (c *Config) JWKSFetchTimeout() time.Duration {
	return time.Duration(c.JWKSFetchTimeoutSeconds) * time.Second
}

// RateLimitEnabled reports whether a Redis URL was configured
func (c *Config) RateLimitEnabled() bool {
	return c.RedisURL != ""
}

// TelemetryEnabled reports whether OTLP export is switched on
func (c *Config) TelemetryEnabled() bool {
	return c.OTELEnabled && c.OTELExporterEndpoint != ""
}

// IsDev reports whether development-only routes should be mounted
func (c *Config) IsDev() bool {
	return IsDevEnv(c.AppEnv)
}

// IsDevEnv reports whether an APP_ENV value names a development environment
func IsDevEnv(appEnv string) bool {
	return appEnv == "dev" || appEnv == "development"
}

// normalizeDomain strips a scheme and trailing slashes, so both
// "tenant.auth0.com" and "https://tenant.auth0.com/" are accepted.
func normalizeDomain(domain string) string {
	d := strings.TrimSpace(domain)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	return strings.TrimRight(d, "/")
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
