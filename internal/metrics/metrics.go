package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the session service.
type Metrics struct {
	LoginAttempts  *prometheus.CounterVec
	Validations    *prometheus.CounterVec
	Logouts        *prometheus.CounterVec
	BackendLatency *prometheus.HistogramVec
}

// NewMetrics registers every collector on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "str_login_attempts_total",
				Help: "Login attempts by outcome (success, rejected, error, throttled)",
			},
			[]string{"outcome"},
		),
		Validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "str_session_validations_total",
				Help: "Session validations by outcome (valid, invalid, absent, timeout, error)",
			},
			[]string{"outcome"},
		),
		Logouts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "str_logouts_total",
				Help: "Session teardowns by reason (user, invalidated)",
			},
			[]string{"reason"},
		),
		BackendLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "str_backend_request_seconds",
				Help:    "Latency of authentication service calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
}

var (
	defaultMetrics *Metrics
	registry       *prometheus.Registry
	_once          sync.Once
)

// Default returns the process-wide metrics, registered on Registry().
func Default() *Metrics {
	_once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		defaultMetrics = NewMetrics(registry)
	})
	return defaultMetrics
}

// Registry is the gatherer served on /metrics.
func Registry() *prometheus.Registry {
	Default()
	return registry
}
