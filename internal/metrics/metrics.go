// Package metrics collects Prometheus metrics for the HTTP layer, the access
// gate and the identity cache.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the rest of the application reports to.
type Recorder interface {
	RecordAuthFailure(reason string)
	RecordOperation(feature, operation, outcome string)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	RecordCacheLookup(hit bool)
}

type Collector struct {
	authFailures *prometheus.CounterVec
	operations   *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
}

// NewCollector builds a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_auth_failures_total",
			Help: "Rejected bearer tokens by reason.",
		}, []string{"reason"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_operations_total",
			Help: "Coordinator operations by feature, operation and outcome.",
		}, []string{"feature", "operation", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eventhub_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_identity_cache_lookups_total",
			Help: "Identity cache lookups by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(c.authFailures, c.operations, c.httpRequests, c.httpLatency, c.cacheLookups)
	return c
}

func (c *Collector) RecordAuthFailure(reason string) {
	c.authFailures.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordOperation(feature, operation, outcome string) {
	c.operations.WithLabelValues(feature, operation, outcome).Inc()
}

// RecordHTTPRequest expects route to be the matched route template, not the
// raw path, to keep label cardinality bounded.
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used when metrics are disabled.
type Nop struct{}

func (Nop) RecordAuthFailure(string) {}
func (Nop) RecordOperation(string, string, string) {}
func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
func (Nop) RecordCacheLookup(bool) {}
