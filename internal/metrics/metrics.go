// Package metrics exposes the engine's Prometheus instrumentation,
// namespaced "aouhttp". Every collector is registered against a
// caller-supplied prometheus.Registerer rather than the global registry,
// so an embedding application (or a test) can substitute its own.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "aouhttp"

// Metrics groups every collector the connection and buffer-pool layers
// report into.
type Metrics struct {
	ConnectionsTotal  prometheus.Counter
	ConnectionsActive prometheus.Gauge
	RequestsTotal     *prometheus.CounterVec
	ParseErrorsTotal  *prometheus.CounterVec
	BufferPoolGets    *prometheus.CounterVec
	BufferPoolPuts    *prometheus.CounterVec
	BufferPoolHits    *prometheus.CounterVec
	BufferPoolMisses  *prometheus.CounterVec
	RequestDuration   prometheus.Histogram
}

// New builds and registers every collector against reg. Passing nil uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ConnectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total number of accepted connections.",
		}),
		ConnectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of connections currently being served.",
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of requests completed, labeled by response status.",
		}, []string{"status"}),
		ParseErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Total number of requests that ended without a Success parse, labeled by kind.",
		}, []string{"kind"}),
		BufferPoolGets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "buffer_pool",
			Name:      "gets_total",
			Help:      "Total number of buffer acquisitions, labeled by size class.",
		}, []string{"size"}),
		BufferPoolPuts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "buffer_pool",
			Name:      "puts_total",
			Help:      "Total number of buffer releases, labeled by size class.",
		}, []string{"size"}),
		BufferPoolHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "buffer_pool",
			Name:      "hits_total",
			Help:      "Total number of buffer acquisitions served from the pool, labeled by size class.",
		}, []string{"size"}),
		BufferPoolMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "buffer_pool",
			Name:      "misses_total",
			Help:      "Total number of buffer acquisitions that allocated fresh, labeled by size class.",
		}, []string{"size"}),
		RequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time from a parsed request's dispatch to its response being flushed.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
