package client

import (
	"net/http"

	"casting-api/internal/observability/requestid"
)

// RequestIDTransport is an http.RoundTripper that copies the request id
// from the request context into the X-Request-Id header of outbound calls.
type RequestIDTransport struct {
	base http.RoundTripper
}

// NewRequestIDTransport wraps base. A nil base means http.DefaultTransport.
func NewRequestIDTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RequestIDTransport{base: base}
}

// RoundTrip implements http.RoundTripper.
// An X-Request-Id header already set by the caller is never overwritten.
func (t *RequestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("X-Request-Id") != "" {
		return t.base.RoundTrip(req)
	}

	ctx := req.Context()
	reqID := requestid.GetRequestID(ctx)
	if reqID == "" {
		// Background fetches (e.g. the keys command) have no request id
		return t.base.RoundTrip(req)
	}

	// RoundTrippers must not mutate the caller's request
	clonedReq := req.Clone(ctx)
	clonedReq.Header.Set("X-Request-Id", reqID)

	return t.base.RoundTrip(clonedReq)
}
