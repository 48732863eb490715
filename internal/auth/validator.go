package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
)

// KeyProvider resolves a token's kid to a public signing key
type KeyProvider interface {
	Lookup(ctx context.Context, kid string) (jose.JSONWebKey, error)
}

// TokenVerifier validates bearer tokens
type TokenVerifier interface {
	Verify(ctx context.Context, tokenString string) (Claims, error)
}

// VerifierConfig is loaded once at startup
type VerifierConfig struct {
	Audience   string
	Issuer     string
	Algorithms []string
	Leeway     time.Duration
}

// Verifier validates tokens issued by the identity provider against its
// published key set.
type Verifier struct {
	keys    KeyProvider
	parser  *jwt.Parser
	allowed map[string]bool
}

// NewVerifier creates a new Verifier. Algorithms must already be
// restricted to asymmetric ones, see config.Validate.
func NewVerifier(keys KeyProvider, cfg VerifierConfig) *Verifier {
	allowed := make(map[string]bool, len(cfg.Algorithms))
	for _, alg := range cfg.Algorithms {
		allowed[alg] = true
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods(cfg.Algorithms),
		jwt.WithAudience(cfg.Audience),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	)

	return &Verifier{
		keys:    keys,
		parser:  parser,
		allowed: allowed,
	}
}

// Verify checks the token's signature, expiry, audience and issuer and
// returns the full claim set. Every failure is an *AuthError.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (Claims, error) {
	unverified, _, err := v.parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, NewAuthError(KindMalformedToken, MsgMalformedToken, err)
	}

	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		return nil, NewAuthError(KindKeyNotFound, MsgKeyNotFound, errors.New("token header has no kid"))
	}

	token, err := v.parser.ParseWithClaims(tokenString, jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		alg := t.Method.Alg()
		if !v.allowed[alg] {
			return nil, fmt.Errorf("signing method %s is not allowed", alg)
		}

		key, err := v.keys.Lookup(ctx, kid)
		if err != nil {
			return nil, err
		}
		if key.Algorithm != "" && key.Algorithm != alg {
			return nil, fmt.Errorf("key %s is bound to %s, token uses %s", kid, key.Algorithm, alg)
		}
		return key.Key, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, NewAuthError(KindTokenInvalid, MsgTokenInvalid, errors.New("token not valid"))
	}

	return Claims(mapClaims), nil
}

// classifyParseError maps jwt errors onto the auth taxonomy. Errors from
// the key lookup are already classified and pass through unchanged.
func classifyParseError(err error) *AuthError {
	if authErr, ok := IsAuthError(err); ok {
		return authErr
	}

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return NewAuthError(KindTokenExpired, MsgTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwt.ErrTokenNotValidYet):
		return NewAuthError(KindClaimsInvalid, MsgClaimsInvalid, err)
	default:
		return NewAuthError(KindTokenInvalid, MsgTokenInvalid, err)
	}
}
