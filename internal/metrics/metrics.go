// Package metrics holds the Prometheus instruments for the market
// data gateway. All counters are registered on a private registry so
// multiple instances (tests, embedded use) never collide.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	registry *prometheus.Registry

	CacheHits        *prometheus.CounterVec // labels: category
	CacheMisses      *prometheus.CounterVec // labels: category
	ProviderRequests *prometheus.CounterVec // labels: provider, category
	ProviderFailures *prometheus.CounterVec // labels: provider, category
	FallbackTotal    *prometheus.CounterVec // labels: category
	ChainExhausted   *prometheus.CounterVec // labels: category
	RequestDur       *prometheus.HistogramVec

	StreamClients prometheus.Gauge
	StreamFrames  prometheus.Counter
}

// New registers and returns all gateway metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mdgateway_cache_hits_total",
			Help: "Cache hits by data category",
		}, []string{"category"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mdgateway_cache_misses_total",
			Help: "Cache misses by data category",
		}, []string{"category"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mdgateway_provider_requests_total",
			Help: "Upstream provider attempts",
		}, []string{"provider", "category"}),
		ProviderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mdgateway_provider_failures_total",
			Help: "Upstream provider failures",
		}, []string{"provider", "category"}),
		FallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mdgateway_fallback_total",
			Help: "Requests answered by the synthetic fallback generator",
		}, []string{"category"}),
		ChainExhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mdgateway_chain_exhausted_total",
			Help: "Requests where every usable real provider failed",
		}, []string{"category"}),
		RequestDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mdgateway_request_duration_seconds",
			Help:    "Gateway pipeline latency by category",
			Buckets: prometheus.DefBuckets,
		}, []string{"category"}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mdgateway_stream_clients",
			Help: "Currently connected streaming clients",
		}),
		StreamFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mdgateway_stream_frames_total",
			Help: "Quote frames pushed to streaming clients",
		}),
	}

	m.registry.MustRegister(
		m.CacheHits, m.CacheMisses,
		m.ProviderRequests, m.ProviderFailures,
		m.FallbackTotal, m.ChainExhausted,
		m.RequestDur,
		m.StreamClients, m.StreamFrames,
	)
	return m
}

// Handler returns the HTTP handler serving this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
