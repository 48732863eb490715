package requestid

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

type contextKey string

const requestIDContextKey contextKey = "request_id"

// ulid.Monotonic is not safe for concurrent use
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewRequestID generates a new ULID request ID prefixed with "req_".
// ULIDs sort by creation time, which keeps request logs ordered.
func NewRequestID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		// Monotonic entropy overflowed within the same millisecond
		return "req_" + ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	}
	return "req_" + id.String()
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// SetRequestID stores request ID in context
func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}
