package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the exception engine's metrics
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	// Sweep metrics
	SweepsTotal      *prometheus.CounterVec
	SweepDuration    *prometheus.HistogramVec
	OrdersReconciled *prometheus.CounterVec
	OrdersCompleted  *prometheus.CounterVec

	// Repick metrics
	RepicksApplied   *prometheus.CounterVec
	RepicksExhausted *prometheus.CounterVec

	// Pick-completion metrics
	CompletionMessages *prometheus.CounterVec
	CompletionBatches  prometheus.Counter

	// Collaborator metrics
	CollaboratorFailures *prometheus.CounterVec
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
	Subsystem   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "wms",
		Subsystem:   "exceptions",
	}
}

// New creates a new Metrics instance with its own registry
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()

	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,
	}

	m.SweepsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Subsystem: config.Subsystem,
		Name:      "sweeps_total",
		Help:      "Exception sweeps run, by outcome (completed, skipped)",
	}, []string{"outcome"})

	m.SweepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: config.Namespace,
		Subsystem: config.Subsystem,
		Name:      "sweep_duration_seconds",
		Help:      "Duration of exception sweeps per order type",
		Buckets:   prometheus.DefBuckets,
	}, []string{"order_type"})

	m.OrdersReconciled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Subsystem: config.Subsystem,
		Name:      "orders_reconciled_total",
		Help:      "WIP orders resolved by a sweep, by order type and classification",
	}, []string{"order_type", "classification"})

	m.OrdersCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Subsystem: config.Subsystem,
		Name:      "orders_completed_total",
		Help:      "Orders moved to COMPLETE by the engine",
	}, []string{"order_type"})

	m.RepicksApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Subsystem: config.Subsystem,
		Name:      "repicks_applied_total",
		Help:      "Auto-repicks applied, by order type",
	}, []string{"order_type"})

	m.RepicksExhausted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Subsystem: config.Subsystem,
		Name:      "repicks_exhausted_total",
		Help:      "Repick candidates skipped because the straggle budget was spent",
	}, []string{"order_type"})

	m.CompletionMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Subsystem: config.Subsystem,
		Name:      "completion_messages_total",
		Help:      "Pick-completion messages handled, by result (processed, repaired, dropped)",
	}, []string{"result"})

	m.CompletionBatches = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Subsystem: config.Subsystem,
		Name:      "completion_batches_total",
		Help:      "Pick-completion batches dispatched to workers",
	})

	m.CollaboratorFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Subsystem: config.Subsystem,
		Name:      "collaborator_failures_total",
		Help:      "Collaborator calls that failed and were degraded per order",
	}, []string{"collaborator", "operation"})

	registry.MustRegister(
		m.SweepsTotal,
		m.SweepDuration,
		m.OrdersReconciled,
		m.OrdersCompleted,
		m.RepicksApplied,
		m.RepicksExhausted,
		m.CompletionMessages,
		m.CompletionBatches,
		m.CollaboratorFailures,
	)

	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
