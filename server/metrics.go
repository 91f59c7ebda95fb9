package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the server's Prometheus instruments, bound to a private
// registry so tests can stand up independent servers.
type metrics struct {
	registry *prometheus.Registry

	requestsTotal      *prometheus.CounterVec
	generationSeconds  *prometheus.HistogramVec
	generationFailures *prometheus.CounterVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chimerad",
			Name:      "requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"route", "code"}),
		generationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chimerad",
			Name:      "generation_seconds",
			Help:      "Wall time of generation-backend calls, by kind.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"kind"}),
		generationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chimerad",
			Name:      "generation_failures_total",
			Help:      "Failed generation-backend calls, by kind.",
		}, []string{"kind"}),
	}
}
