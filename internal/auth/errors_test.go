package auth

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAuthError_Status(t *testing.T) {
	unauthorized := []AuthErrorKind{
		KindAuthHeaderMissing,
		KindAuthHeaderMalformed,
		KindMalformedToken,
		KindKeyNotFound,
		KindKeySetUnavailable,
		KindTokenExpired,
		KindClaimsInvalid,
		KindTokenInvalid,
		KindPermissionsClaimMissing,
	}
	for _, kind := range unauthorized {
		assert.Equal(t, http.StatusUnauthorized, NewAuthError(kind, "x", nil).HTTPStatus(), string(kind))
	}

	assert.Equal(t, http.StatusForbidden, NewAuthError(KindPermissionDenied, "x", nil).HTTPStatus())
}

func TestAuthError_WrapAndUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := NewAuthError(KindKeySetUnavailable, MsgKeySetUnavailable, cause)

	assert.Equal(t, "unable to fetch signing keys: dial tcp: i/o timeout", err.Error())
	assert.Equal(t, KindKeySetUnavailable, err.Kind())
	assert.Equal(t, MsgKeySetUnavailable, err.PublicMessage())
	assert.Equal(t, http.StatusUnauthorized, err.HTTPStatus())
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("verify: %w", err)
	got, ok := IsAuthError(wrapped)
	assert.True(t, ok)
	assert.Same(t, err, got)

	_, ok = IsAuthError(cause)
	assert.False(t, ok)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "***", maskToken(""))
	assert.Equal(t, "***", maskToken("short"))
	assert.Equal(t, "eyJhbGciOiJS...", maskToken("eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9"))
}
