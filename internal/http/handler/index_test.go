package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"casting-api/internal/observability/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	ok := pingFunc(func(ctx context.Context) error { return nil })
	down := pingFunc(func(ctx context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name   string
		checks map[string]Pinger
		status int
		want   map[string]string
	}{
		{"all up", map[string]Pinger{"database": ok, "redis": ok}, http.StatusOK, map[string]string{"database": "ok", "redis": "ok"}},
		{"redis not configured", map[string]Pinger{"database": ok, "redis": nil}, http.StatusOK, map[string]string{"database": "ok"}},
		{"database down", map[string]Pinger{"database": down}, http.StatusServiceUnavailable, map[string]string{"database": "unavailable"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checks)

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			req = req.WithContext(logger.SetLoggerInContext(req.Context(), logger.NewNop()))
			rec := httptest.NewRecorder()
			h.Ready(rec, req)

			assert.Equal(t, tt.status, rec.Code)

			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body.Checks)
		})
	}

	rec := httptest.NewRecorder()
	NewHealthHandler(nil).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
