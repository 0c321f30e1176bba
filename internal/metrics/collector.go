// Package metrics exposes provider and HTTP counters in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pixshop/internal/domain"
)

const statusOK = "ok"

// Collector owns its registry so tests and several servers in one process
// never collide on metric names.
type Collector struct {
	registry *prometheus.Registry

	attemptsTotal   *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	outcomesTotal   *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewCollector registers every metric under namespace.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		attemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_attempts_total",
				Help:      "Provider calls by provider, operation and result kind",
			},
			[]string{"provider", "operation", "status"},
		),
		attemptDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_attempt_duration_seconds",
				Help:      "Provider call latency in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
			[]string{"provider", "operation"},
		),
		outcomesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_outcomes_total",
				Help:      "Final operation outcomes by source and result kind",
			},
			[]string{"operation", "source", "status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

func status(kind domain.FailureKind) string {
	if kind == 0 {
		return statusOK
	}
	return kind.String()
}

// ObserveAttempt records one provider call.
func (c *Collector) ObserveAttempt(provider string, op domain.Operation, kind domain.FailureKind, elapsed time.Duration) {
	c.attemptsTotal.WithLabelValues(provider, string(op), status(kind)).Inc()
	c.attemptDuration.WithLabelValues(provider, string(op)).Observe(elapsed.Seconds())
}

// ObserveOutcome records the result the caller saw.
func (c *Collector) ObserveOutcome(op domain.Operation, source domain.Source, kind domain.FailureKind) {
	src := string(source)
	if src == "" {
		src = "none"
	}
	c.outcomesTotal.WithLabelValues(string(op), src, status(kind)).Inc()
}

// ObserveHTTP records one served request. route is the matched pattern, not
// the raw path.
func (c *Collector) ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry is exposed for tests and extra collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
