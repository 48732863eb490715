package client

import (
	"net/http"
	"time"
)

// maxRedirects bounds redirect chains on outbound calls
const maxRedirects = 3

// NewCustomHTTPClient creates an http.Client with the given overall timeout,
// pooled connections and X-Request-Id propagation.
//
// http.DefaultClient has no timeout, so a stalled identity provider would
// hang the request that triggered a key set fetch.
func NewCustomHTTPClient(timeout time.Duration) *http.Client {
	// Start with http.DefaultTransport to get connection pooling
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()
	baseTransport.ResponseHeaderTimeout = timeout

	return &http.Client{
		Transport: NewRequestIDTransport(baseTransport),
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}
