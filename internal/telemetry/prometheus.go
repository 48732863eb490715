package telemetry

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromMetrics is the pull side of the metrics stack, served on /metrics
type PromMetrics struct {
	Registry    *prometheus.Registry
	JWKSFetches *prometheus.CounterVec
}

// NewPromMetrics creates a registry with Go runtime, process and key set
// fetch collectors
func NewPromMetrics() *PromMetrics {
	reg := prometheus.NewRegistry()

	jwksFetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "casting",
		Name:      "jwks_fetches_total",
		Help:      "Key set fetch attempts against the identity provider, by result.",
	}, []string{"result"})

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		jwksFetches,
	)

	return &PromMetrics{
		Registry:    reg,
		JWKSFetches: jwksFetches,
	}
}

// Handler serves the registry. A non-empty token must be presented as
// X-Metrics-Token or as an Authorization bearer token.
func (p *PromMetrics) Handler(token string) http.Handler {
	h := promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{})
	if token == "" {
		return h
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !metricsTokenMatches(r, token) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":401,"message":"unauthorized"}`))
			return
		}
		h.ServeHTTP(w, r)
	})
}

func metricsTokenMatches(r *http.Request, token string) bool {
	presented := r.Header.Get("X-Metrics-Token")
	if presented == "" {
		presented = strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	}
	if presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(token)) == 1
}
