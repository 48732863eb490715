package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"casting-api/internal/auth"
	"casting-api/internal/observability/logger"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct{ err error }

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int)) = 1
	return nil
}

type fakePool struct{ err error }

func (p fakePool) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return fakeRow{err: p.err}
}

func debugRequest(path string, claims auth.Claims) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	ctx := logger.SetLoggerInContext(context.Background(), logger.NewNop())
	ctx = logger.InitRootErrorContext(ctx)
	if claims != nil {
		ctx = auth.SetClaimsForTesting(ctx, claims)
	}
	return req.WithContext(ctx)
}

func TestDebugHandler_GetAuthDebug_ProductionBlocked(t *testing.T) {
	h := NewDebugHandler("production", fakePool{})

	rec := httptest.NewRecorder()
	h.GetAuthDebug(rec, debugRequest("/debug/auth", auth.Claims{"sub": "auth0|x"}))

	assert.Equal(t, http.StatusNotFound, rec.Code, "should return 404 in production")
}

func TestDebugHandler_GetAuthDebug_EmptyEnvIsProduction(t *testing.T) {
	h := NewDebugHandler("", fakePool{})

	rec := httptest.NewRecorder()
	h.GetAuthDebug(rec, debugRequest("/debug/auth", auth.Claims{"sub": "auth0|x"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDebugHandler_GetAuthDebug_DevAllowed(t *testing.T) {
	h := NewDebugHandler("dev", fakePool{})

	claims := auth.Claims{
		"sub":         "auth0|casting-assistant",
		"iss":         "https://casting.eu.auth0.com/",
		"permissions": []interface{}{"view:actors", "view:movies"},
	}

	rec := httptest.NewRecorder()
	h.GetAuthDebug(rec, debugRequest("/debug/auth", claims))

	require.Equal(t, http.StatusOK, rec.Code)

	var response DebugAuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))

	assert.Equal(t, "auth0|casting-assistant", response.Subject)
	assert.Equal(t, "https://casting.eu.auth0.com/", response.Issuer)
	assert.True(t, response.HasPermissions)
	assert.Equal(t, []string{"view:actors", "view:movies"}, response.Permissions)
	assert.Equal(t, []string{"iss", "permissions", "sub"}, response.ClaimNames)
}

func TestDebugHandler_GetAuthDebug_NoClaims(t *testing.T) {
	h := NewDebugHandler("dev", fakePool{})

	rec := httptest.NewRecorder()
	h.GetAuthDebug(rec, debugRequest("/debug/auth", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDebugHandler_PingDB(t *testing.T) {
	rec := httptest.NewRecorder()
	NewDebugHandler("dev", fakePool{}).PingDB(rec, debugRequest("/debug/db/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	NewDebugHandler("dev", fakePool{err: errors.New("connection reset")}).PingDB(rec, debugRequest("/debug/db/ping", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["message"])
}
