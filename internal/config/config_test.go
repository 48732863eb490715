package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Auth0Domain:               "casting.eu.auth0.com",
		Auth0Audience:             "casting",
		JWTAlgorithms:             "RS256",
		JWKSCacheTTLSeconds:       300,
		JWKSFetchTimeoutSeconds:   5,
		JWKSFetchRetries:          1,
		DatabaseURL:               "postgres://localhost/casting",
		RateLimitPerSubjectPerMin: 120,
		AuditRetentionDays:        90,
		OTELSamplingRatio:         0.1,
	}
}

func TestConfig_Validate_Valid(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfig_Issuer_And_JWKSURL(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, "https://casting.eu.auth0.com/", cfg.Issuer())
	assert.Equal(t, "https://casting.eu.auth0.com/.well-known/jwks.json", cfg.JWKSURL())
}

func TestConfig_Validate_NormalizesDomain(t *testing.T) {
	cfg := validConfig()
	cfg.Auth0Domain = "  https://casting.eu.auth0.com/ "

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "casting.eu.auth0.com", cfg.Auth0Domain)
	assert.Equal(t, "https://casting.eu.auth0.com/", cfg.Issuer())
}

func TestConfig_Validate_RejectsSymmetricAlgorithms(t *testing.T) {
	tests := []struct {
		name string
		algs string
	}{
		{name: "HS256", algs: "HS256"},
		{name: "mixed with RS256", algs: "RS256,HS512"},
		{name: "none", algs: "none"},
		{name: "empty", algs: " , "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.JWTAlgorithms = tt.algs

			err := cfg.Validate()
			assert.Error(t, err)
		})
	}
}

func TestConfig_Validate_AcceptsAsymmetricAlgorithms(t *testing.T) {
	cfg := validConfig()
	cfg.JWTAlgorithms = "RS256, ES256 ,PS512"

	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"RS256", "ES256", "PS512"}, cfg.GetAlgorithms())
}

func TestConfig_Validate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "missing domain", mutate: func(c *Config) { c.Auth0Domain = "" }},
		{name: "missing audience", mutate: func(c *Config) { c.Auth0Audience = "" }},
		{name: "negative clock skew", mutate: func(c *Config) { c.JWTClockSkewSeconds = -1 }},
		{name: "negative cache ttl", mutate: func(c *Config) { c.JWKSCacheTTLSeconds = -5 }},
		{name: "zero fetch timeout", mutate: func(c *Config) { c.JWKSFetchTimeoutSeconds = 0 }},
		{name: "too many retries", mutate: func(c *Config) { c.JWKSFetchRetries = 10 }},
		{name: "missing database url", mutate: func(c *Config) { c.DatabaseURL = "" }},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimitPerSubjectPerMin = 0 }},
		{name: "zero audit retention", mutate: func(c *Config) { c.AuditRetentionDays = 0 }},
		{name: "sampling ratio above 1", mutate: func(c *Config) { c.OTELSamplingRatio = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_GetCORSOrigins_WithEmptyEntries(t *testing.T) {
	cfg := &Config{
		CORSAllowedOrigins: "https://a.example.com,, https://b.example.com ,",
	}

	origins := cfg.GetCORSOrigins()

	// Empty entries should be ignored
	assert.Len(t, origins, 2)
	assert.Equal(t, "https://a.example.com", origins[0])
	assert.Equal(t, "https://b.example.com", origins[1])
}

func TestConfig_Durations(t *testing.T) {
	cfg := validConfig()
	cfg.JWTClockSkewSeconds = 30

	assert.Equal(t, 30*time.Second, cfg.ClockSkew())
	assert.Equal(t, 300*time.Second, cfg.JWKSCacheTTL())
	assert.Equal(t, 5*time.Second, cfg.JWKSFetchTimeout())
}

func TestConfig_Toggles(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.RateLimitEnabled())
	assert.False(t, cfg.TelemetryEnabled())
	assert.False(t, cfg.IsDev())

	cfg.RedisURL = "redis://localhost:6379/0"
	cfg.OTELEnabled = true
	cfg.OTELExporterEndpoint = "localhost:4317"
	cfg.AppEnv = "dev"

	assert.True(t, cfg.RateLimitEnabled())
	assert.True(t, cfg.TelemetryEnabled())
	assert.True(t, cfg.IsDev())
}

func TestIsDevEnv(t *testing.T) {
	for appEnv, want := range map[string]bool{
		"dev":         true,
		"development": true,
		"production":  false,
		"test":        false,
		"":            false,
	} {
		assert.Equal(t, want, IsDevEnv(appEnv), "APP_ENV=%q", appEnv)
		assert.Equal(t, want, (&Config{AppEnv: appEnv}).IsDev(), "APP_ENV=%q", appEnv)
	}
}
