// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "arttimeline"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing,
// so components can be built without a registry in tests.
type Metrics struct {
	registry *prometheus.Registry

	cacheLookups   *prometheus.CounterVec
	remoteRequests *prometheus.CounterVec
	curations      *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by namespace and result (hit, miss, error).",
		}, []string{"namespace", "result"}),
		remoteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "met_requests_total",
			Help:      "Outbound Met collection API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		curations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "curated_artworks",
			Help:      "Artworks returned per curation, by period.",
			Buckets:   []float64{0, 1, 2, 4, 8, 12, 16, 20},
		}, []string{"period"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Inbound HTTP requests by method and status code.",
		}, []string{"method", "code"}),
	}
	reg.MustRegister(
		m.cacheLookups,
		m.remoteRequests,
		m.curations,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) CacheLookup(ns, result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(ns, result).Inc()
}

func (m *Metrics) RemoteRequest(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.remoteRequests.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) Curated(period string, n int) {
	if m == nil {
		return
	}
	m.curations.WithLabelValues(period).Observe(float64(n))
}

func (m *Metrics) HTTPRequest(method string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}
