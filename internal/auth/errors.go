package auth

import (
	"errors"
	"net/http"
)

// AuthErrorKind categorizes authentication and authorization failures
type AuthErrorKind string

const (
	KindAuthHeaderMissing       AuthErrorKind = "auth_header_missing"
	KindAuthHeaderMalformed     AuthErrorKind = "auth_header_malformed"
	KindMalformedToken          AuthErrorKind = "malformed_token"
	KindKeyNotFound             AuthErrorKind = "key_not_found"
	KindKeySetUnavailable       AuthErrorKind = "key_set_unavailable"
	KindTokenExpired            AuthErrorKind = "token_expired"
	KindClaimsInvalid           AuthErrorKind = "claims_invalid"
	KindTokenInvalid            AuthErrorKind = "token_invalid"
	KindPermissionsClaimMissing AuthErrorKind = "permissions_claim_missing"
	KindPermissionDenied        AuthErrorKind = "permission_denied"
)

// Messages returned to API consumers
const (
	MsgAuthHeaderMissing       = "authorization header is expected"
	MsgAuthHeaderNotBearer     = "authorization header must start with Bearer"
	MsgAuthHeaderNoToken       = "token not found"
	MsgAuthHeaderNotSingle     = "authorization header must be Bearer token"
	MsgMalformedToken          = "error decoding token headers"
	MsgKeyNotFound             = "unable to find appropriate key"
	MsgKeySetUnavailable       = "unable to fetch signing keys"
	MsgTokenExpired            = "token is expired"
	MsgClaimsInvalid           = "incorrect claims, please check the audience and issuer"
	MsgTokenInvalid            = "unable to parse authentication token"
	MsgPermissionsClaimMissing = "permissions not in payload"
	MsgPermissionDenied        = "permission not found"
)

// AuthError is a categorized auth failure. It carries the HTTP status and
// the message rendered to the client, and is not modified after creation.
type AuthError struct {
	kind    AuthErrorKind
	message string
	status  int
	err     error
}

// Error implements the error interface
func (e *AuthError) Error() string {
	if e.err != nil {
		return e.message + ": " + e.err.Error()
	}
	return e.message
}

// Unwrap implements error unwrapping
func (e *AuthError) Unwrap() error {
	return e.err
}

// Kind returns the failure category
func (e *AuthError) Kind() AuthErrorKind {
	return e.kind
}

// HTTPStatus returns 401 or 403
func (e *AuthError) HTTPStatus() int {
	return e.status
}

// PublicMessage returns the message without the wrapped cause
func (e *AuthError) PublicMessage() string {
	return e.message
}

// NewAuthError creates a new AuthError. PermissionDenied maps to 403,
// every other kind to 401.
func NewAuthError(kind AuthErrorKind, message string, err error) *AuthError {
	status := http.StatusUnauthorized
	if kind == KindPermissionDenied {
		status = http.StatusForbidden
	}
	return &AuthError{
		kind:    kind,
		message: message,
		status:  status,
		err:     err,
	}
}

// IsAuthError checks if an error is an AuthError and returns it
func IsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}

// maskToken masks a JWT token for safe logging
// Shows only the first 12 characters followed by "..."
func maskToken(token string) string {
	if len(token) <= 12 {
		return "***"
	}
	return token[:12] + "..."
}
