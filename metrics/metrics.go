// Package metrics exposes Prometheus counters for platform API usage.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cascade"

// APIMetrics counts platform API calls. Its Hook method plugs into
// twitter.ClientConfig.MetricsHook.
type APIMetrics struct {
	// Calls counts requests by endpoint and result (success, error, rate_limited).
	Calls *prometheus.CounterVec

	// RateLimited counts 429 responses by endpoint.
	RateLimited *prometheus.CounterVec
}

// New registers the API metrics with reg. Pass prometheus.DefaultRegisterer
// to expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *APIMetrics {
	f := promauto.With(reg)
	return &APIMetrics{
		Calls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "calls_total",
			Help:      "Platform API calls by endpoint and result",
		}, []string{"endpoint", "result"}),
		RateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "rate_limited_total",
			Help:      "Platform API rate-limit responses by endpoint",
		}, []string{"endpoint"}),
	}
}

// Hook records one API call outcome.
func (m *APIMetrics) Hook(endpoint string, success, rateLimited bool) {
	result := "error"
	switch {
	case rateLimited:
		result = "rate_limited"
		m.RateLimited.WithLabelValues(endpoint).Inc()
	case success:
		result = "success"
	}
	m.Calls.WithLabelValues(endpoint, result).Inc()
}
