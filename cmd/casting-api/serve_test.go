package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"casting-api/internal/auth"
	"casting-api/internal/config"
	"casting-api/internal/http/handler"
	"casting-api/internal/observability/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockDB simulates a dependency with a ping method
type MockDB struct {
	pingError error
}

func (m *MockDB) Ping(ctx context.Context) error {
	return m.pingError
}

func newHealthRouter(checks map[string]handler.Pinger) http.Handler {
	return buildRouter(RouterDeps{
		Cfg:           &config.Config{},
		Log:           logger.NewNop(),
		HealthHandler: handler.NewHealthHandler(checks),
	})
}

// TestHealthEndpoint verifies /health returns 200 without dependencies
func TestHealthEndpoint(t *testing.T) {
	r := newHealthRouter(map[string]handler.Pinger{"database": &MockDB{pingError: context.DeadlineExceeded}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "liveness does not depend on the database")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
}

// TestHealthEndpoint_RequestID verifies X-Request-Id is generated or preserved
func TestHealthEndpoint_RequestID(t *testing.T) {
	r := newHealthRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Header().Get("X-Request-Id"), "req_")

	clientRequestID := "req_1234567890_abcdef123456"
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", clientRequestID)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, clientRequestID, w.Header().Get("X-Request-Id"))
}

func TestReadyEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]handler.Pinger
		status int
		state  string
		want   map[string]string
	}{
		{
			name:   "no dependencies",
			status: http.StatusOK,
			state:  "ready",
			want:   map[string]string{},
		},
		{
			name:   "all healthy",
			checks: map[string]handler.Pinger{"database": &MockDB{}, "redis": &MockDB{}},
			status: http.StatusOK,
			state:  "ready",
			want:   map[string]string{"database": "ok", "redis": "ok"},
		},
		{
			name:   "database down",
			checks: map[string]handler.Pinger{"database": &MockDB{pingError: context.DeadlineExceeded}, "redis": &MockDB{}},
			status: http.StatusServiceUnavailable,
			state:  "not ready",
			want:   map[string]string{"database": "unavailable", "redis": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			w := httptest.NewRecorder()
			newHealthRouter(tt.checks).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)

			var response struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.state, response.Status)
			assert.Equal(t, tt.want, response.Checks)
		})
	}
}

func TestResourceRoutesNeedGuard(t *testing.T) {
	// Without a guard no resource route is mounted
	r := newHealthRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/actors", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewGuard_UsesConfiguredIdentityProvider(t *testing.T) {
	cfg := &config.Config{
		Auth0Domain:             "casting.eu.auth0.com",
		Auth0Audience:           "casting",
		JWTAlgorithms:           "RS256",
		JWKSFetchTimeoutSeconds: 1,
	}

	guard := newGuard(cfg, nil, nil)
	require.NotNil(t, guard)

	// A missing header is rejected before any key set fetch
	req := httptest.NewRequest(http.MethodGet, "/actors", nil)
	req = req.WithContext(logger.SetLoggerInContext(req.Context(), logger.NewNop()))
	_, err := guard.Authorize(req, auth.PermViewActors)
	require.Error(t, err)
	authErr, ok := auth.IsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, auth.KindAuthHeaderMissing, authErr.Kind())
}
