package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

const (
	// maxJWKSBodyBytes bounds the key set response body
	maxJWKSBodyBytes = 1 << 20

	// minForcedRefreshInterval bounds refreshes triggered by unknown kids
	minForcedRefreshInterval = 10 * time.Second

	defaultRetryBackoff = 200 * time.Millisecond
)

// KeySet is an immutable snapshot of the identity provider's signing keys.
type KeySet struct {
	keys      map[string]jose.JSONWebKey
	kids      []string
	fetchedAt time.Time
}

// Key returns the public signing key with the given kid
func (s *KeySet) Key(kid string) (jose.JSONWebKey, bool) {
	k, ok := s.keys[kid]
	return k, ok
}

// KIDs returns key identifiers in the order the provider published them
func (s *KeySet) KIDs() []string {
	out := make([]string, len(s.kids))
	copy(out, s.kids)
	return out
}

// Len returns the number of usable signing keys
func (s *KeySet) Len() int {
	return len(s.kids)
}

// FetchedAt returns when the snapshot was retrieved
func (s *KeySet) FetchedAt() time.Time {
	return s.fetchedAt
}

// KeySetCacheConfig configures a KeySetCache
type KeySetCacheConfig struct {
	URL string
	// Client must carry a finite timeout, see client.NewCustomHTTPClient
	Client *http.Client
	// TTL of a fetched snapshot. Zero fetches on every call.
	TTL time.Duration
	// FetchTimeout bounds a single attempt
	FetchTimeout time.Duration
	// Retries is the number of extra attempts after a failed fetch
	Retries int
	// RetryBackoff is the fixed pause between attempts
	RetryBackoff time.Duration
	// Fetches counts fetch attempts by result. Optional.
	Fetches *prometheus.CounterVec
}

// KeySetCache fetches the JWKS document and serves it from an immutable
// snapshot. Readers load the snapshot atomically; refreshes build a new
// one and swap it in, so a reader never sees a partial key set.
type KeySetCache struct {
	url          string
	client       *http.Client
	ttl          time.Duration
	fetchTimeout time.Duration
	retries      int
	backoff      time.Duration
	fetches      *prometheus.CounterVec
	now          func() time.Time

	current    atomic.Pointer[KeySet]
	group      singleflight.Group
	lastForced atomic.Int64
}

// NewKeySetCache creates a new KeySetCache
func NewKeySetCache(cfg KeySetCacheConfig) *KeySetCache {
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = httpClient.Timeout
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 5 * time.Second
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}

	return &KeySetCache{
		url:          cfg.URL,
		client:       httpClient,
		ttl:          cfg.TTL,
		fetchTimeout: fetchTimeout,
		retries:      retries,
		backoff:      backoff,
		fetches:      cfg.Fetches,
		now:          time.Now,
	}
}

// Fetch returns the current key set, fetching it when there is no
// snapshot younger than the TTL. Failures are KeySetUnavailable.
func (c *KeySetCache) Fetch(ctx context.Context) (*KeySet, error) {
	set, _, err := c.load(ctx)
	return set, err
}

// Lookup returns the signing key for kid. A miss against a cached snapshot
// triggers one refresh, at most once per minForcedRefreshInterval, so
// rotated keys are picked up before the TTL expires.
func (c *KeySetCache) Lookup(ctx context.Context, kid string) (jose.JSONWebKey, error) {
	set, fresh, err := c.load(ctx)
	if err != nil {
		return jose.JSONWebKey{}, err
	}
	if key, ok := set.Key(kid); ok {
		return key, nil
	}

	if !fresh && c.allowForcedRefresh() {
		set, err = c.refresh(ctx)
		if err != nil {
			return jose.JSONWebKey{}, err
		}
		if key, ok := set.Key(kid); ok {
			return key, nil
		}
	}

	return jose.JSONWebKey{}, NewAuthError(KindKeyNotFound, MsgKeyNotFound, fmt.Errorf("no signing key with kid %q", kid))
}

// load returns the snapshot and whether it was fetched by this call
func (c *KeySetCache) load(ctx context.Context) (*KeySet, bool, error) {
	if c.ttl > 0 {
		if set := c.current.Load(); set != nil && c.now().Sub(set.fetchedAt) < c.ttl {
			return set, false, nil
		}
	}

	set, err := c.refresh(ctx)
	if err != nil {
		return nil, false, err
	}
	return set, true, nil
}

func (c *KeySetCache) allowForcedRefresh() bool {
	now := c.now().UnixNano()
	last := c.lastForced.Load()
	if last != 0 && time.Duration(now-last) < minForcedRefreshInterval {
		return false
	}
	return c.lastForced.CompareAndSwap(last, now)
}

// refresh fetches a new snapshot. Concurrent callers share one fetch.
func (c *KeySetCache) refresh(ctx context.Context) (*KeySet, error) {
	// The shared fetch must not fail because the first caller went away
	fetchCtx := context.WithoutCancel(ctx)

	v, err, _ := c.group.Do("jwks", func() (interface{}, error) {
		return c.fetchWithRetry(fetchCtx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*KeySet), nil
}

func (c *KeySetCache) fetchWithRetry(ctx context.Context) (*KeySet, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(c.backoff)
		}

		set, err := c.fetchOnce(ctx)
		if err == nil {
			c.record("success")
			c.current.Store(set)
			return set, nil
		}
		c.record("error")
		lastErr = err
	}

	return nil, NewAuthError(KindKeySetUnavailable, MsgKeySetUnavailable, lastErr)
}

func (c *KeySetCache) fetchOnce(ctx context.Context) (*KeySet, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build jwks request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch jwks: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJWKSBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read jwks: %w", err)
	}

	return parseKeySet(body, c.now())
}

func (c *KeySetCache) record(result string) {
	if c.fetches != nil {
		c.fetches.WithLabelValues(result).Inc()
	}
}

// parseKeySet decodes a JWKS document. Keys that cannot be parsed, are
// not for signatures, have no kid, or are not public keys are skipped.
// The first key published under a kid wins.
func parseKeySet(body []byte, fetchedAt time.Time) (*KeySet, error) {
	var doc struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode jwks: %w", err)
	}
	if doc.Keys == nil {
		return nil, errors.New("decode jwks: missing keys")
	}

	set := &KeySet{
		keys:      make(map[string]jose.JSONWebKey, len(doc.Keys)),
		fetchedAt: fetchedAt,
	}
	for _, raw := range doc.Keys {
		var key jose.JSONWebKey
		if err := key.UnmarshalJSON(raw); err != nil {
			continue
		}
		if key.KeyID == "" || (key.Use != "" && key.Use != "sig") {
			continue
		}
		public := key.Public()
		if !public.Valid() {
			// symmetric keys have no public form
			continue
		}
		if _, dup := set.keys[key.KeyID]; dup {
			continue
		}
		set.keys[key.KeyID] = public
		set.kids = append(set.kids, key.KeyID)
	}

	return set, nil
}
