// Package metrics exposes Prometheus instrumentation for the router. All
// recording methods are safe on a nil receiver so instrumentation can be
// disabled by simply not constructing it.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the router's Prometheus collectors.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	cacheHitsTotal  prometheus.Counter
	cacheMissTotal  prometheus.Counter
	costTotal       prometheus.Counter
	savingsTotal    prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartllm",
			Name:      "requests_total",
			Help:      "Routed requests by model, provider and outcome.",
		}, []string{"model", "provider", "status"}),
		cacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smartllm",
			Name:      "cache_hits_total",
			Help:      "Response cache hits.",
		}),
		cacheMissTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smartllm",
			Name:      "cache_misses_total",
			Help:      "Response cache misses.",
		}),
		costTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smartllm",
			Name:      "cost_dollars_total",
			Help:      "Accumulated spend in dollars.",
		}),
		savingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smartllm",
			Name:      "savings_dollars_total",
			Help:      "Accumulated savings against the baseline model in dollars.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "smartllm",
			Name:      "request_duration_seconds",
			Help:      "Provider invocation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"model"}),
	}

	reg.MustRegister(
		m.requestsTotal,
		m.cacheHitsTotal,
		m.cacheMissTotal,
		m.costTotal,
		m.savingsTotal,
		m.requestDuration,
	)
	return m
}

// RequestCompleted records a successful routed request.
func (m *Metrics) RequestCompleted(model, provider string, cost, savings float64, latency time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(model, provider, "success").Inc()
	m.costTotal.Add(cost)
	m.savingsTotal.Add(savings)
	m.requestDuration.WithLabelValues(model).Observe(latency.Seconds())
}

// RequestFailed records a failed routed request.
func (m *Metrics) RequestFailed(model, provider string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(model, provider, "error").Inc()
}

// CacheHit records a response served from cache.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHitsTotal.Inc()
}

// CacheMiss records a cache lookup that missed.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMissTotal.Inc()
}
