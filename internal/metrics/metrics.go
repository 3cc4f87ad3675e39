package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var latencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Collector owns the service's Prometheus registry. Construct one per
// process with New and pass it to whatever records metrics.
//
// All recording methods are safe on a nil *Collector and never fail.
type Collector struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
	ledgerOps     *prometheus.CounterVec
	ledgerLatency *prometheus.HistogramVec
	balance       prometheus.Gauge
}

// New creates a Collector with its own registry, including Go runtime and
// process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP Requests",
		}, []string{"method", "endpoint", "http_status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: latencyBuckets,
		}, []string{"endpoint"}),
		ledgerOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bank",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger operations by outcome",
		}, []string{"operation", "outcome"}),
		ledgerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bank",
			Subsystem: "ledger",
			Name:      "operation_duration_seconds",
			Help:      "Ledger operation latency including storage round trips",
			Buckets:   latencyBuckets,
		}, []string{"operation"}),
		balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bank_total_balance_amount",
			Help: "Current balance of account",
		}),
	}

	c.registry.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.ledgerOps,
		c.ledgerLatency,
		c.balance,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the text exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest counts a finished request and observes its latency.
func (c *Collector) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordLedgerOperation counts a ledger operation and observes its latency.
func (c *Collector) RecordLedgerOperation(operation, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.ledgerOps.WithLabelValues(operation, outcome).Inc()
	c.ledgerLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetBalance publishes the most recently observed balance.
func (c *Collector) SetBalance(value float64) {
	if c == nil {
		return
	}
	c.balance.Set(value)
}
