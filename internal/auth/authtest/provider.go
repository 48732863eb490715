// Package authtest runs a fake identity provider for tests: an RSA key,
// a JWKS endpoint served by httptest and helpers that sign tokens.
package authtest

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
)

const (
	Issuer   = "https://casting-test.eu.auth0.com/"
	Audience = "casting"
)

// Provider publishes signing keys and signs tokens with the current one
type Provider struct {
	server *httptest.Server

	mu      sync.Mutex
	key     *rsa.PrivateKey
	kid     string
	retired []jose.JSONWebKey
	version int

	hits   atomic.Int32
	status atomic.Int32
	delay  atomic.Int64
}

// NewProvider starts a JWKS server. It is closed when the test ends.
func NewProvider(t testing.TB) *Provider {
	t.Helper()

	p := &Provider{}
	p.key = GenerateKey(t)
	p.version = 1
	p.kid = "test-key-1"

	p.server = httptest.NewServer(http.HandlerFunc(p.serveJWKS))
	t.Cleanup(p.server.Close)

	return p
}

// GenerateKey returns a fresh 2048 bit RSA key
func GenerateKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return key
}

func (p *Provider) serveJWKS(w http.ResponseWriter, r *http.Request) {
	p.hits.Add(1)

	if d := time.Duration(p.delay.Load()); d > 0 {
		time.Sleep(d)
	}
	if status := int(p.status.Load()); status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("unavailable"))
		return
	}

	p.mu.Lock()
	set := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
		Key:       &p.key.PublicKey,
		KeyID:     p.kid,
		Algorithm: "RS256",
		Use:       "sig",
	}}}
	set.Keys = append(set.Keys, p.retired...)
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(set)
}

// JWKSURL returns the key set endpoint
func (p *Provider) JWKSURL() string {
	return p.server.URL + "/.well-known/jwks.json"
}

// Hits returns how many times the key set was requested
func (p *Provider) Hits() int {
	return int(p.hits.Load())
}

// KID returns the kid of the current signing key
func (p *Provider) KID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kid
}

// FailWith makes the endpoint answer with status. Zero restores it.
func (p *Provider) FailWith(status int) {
	p.status.Store(int32(status))
}

// Delay makes the endpoint wait before answering
func (p *Provider) Delay(d time.Duration) {
	p.delay.Store(int64(d))
}

// Rotate replaces the signing key. keepOld keeps publishing the previous one.
func (p *Provider) Rotate(t testing.TB, keepOld bool) {
	t.Helper()
	key := GenerateKey(t)

	p.mu.Lock()
	defer p.mu.Unlock()
	if keepOld {
		p.retired = append(p.retired, jose.JSONWebKey{
			Key:       &p.key.PublicKey,
			KeyID:     p.kid,
			Algorithm: "RS256",
			Use:       "sig",
		})
	}
	p.version++
	p.key = key
	p.kid = fmt.Sprintf("test-key-%d", p.version)
}

// Claims returns a valid claim set for subject with the given permissions.
// A nil perms slice leaves the permissions claim out.
func Claims(subject string, perms []string) jwt.MapClaims {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": Issuer,
		"aud": []string{Audience, Issuer + "userinfo"},
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	if perms != nil {
		claims["permissions"] = perms
	}
	return claims
}

// Token signs claims with the current key
func (p *Provider) Token(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()
	p.mu.Lock()
	key, kid := p.key, p.kid
	p.mu.Unlock()
	return Sign(t, jwt.SigningMethodRS256, key, kid, claims)
}

// TokenWithPermissions signs a valid token carrying perms
func (p *Provider) TokenWithPermissions(t testing.TB, perms ...string) string {
	t.Helper()
	if perms == nil {
		perms = []string{}
	}
	return p.Token(t, Claims("auth0|casting-assistant", perms))
}

// Sign signs claims with an arbitrary method, key and kid. An empty kid
// leaves the header out.
func Sign(t testing.TB, method jwt.SigningMethod, key interface{}, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(method, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
