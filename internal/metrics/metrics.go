// Package metrics provides Prometheus metrics for the ledger service,
// covering HTTP and business metrics this service can cheaply expose.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector the service registers.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Business metrics for the control plane.
	ActiveWorkers              prometheus.Gauge
	BacklogRejectionsTotal     *prometheus.CounterVec
	TransferCompensationsTotal prometheus.Counter
	WorkerReapedTotal          prometheus.Counter
}

// New creates and registers a Metrics instance against the default registerer.
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a Metrics instance registered against registerer,
// useful for tests that want an isolated registry.
func NewWithRegistry(serviceName string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_http_requests_total",
				Help: "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		RequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ledger_http_requests_in_flight",
				Help: "Current number of HTTP requests being processed.",
			},
		),
		ActiveWorkers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ledger_active_workers",
				Help: "Number of per-user Worker goroutines currently running.",
			},
		),
		BacklogRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_backlog_rejections_total",
				Help: "Admissions rejected because a user's backlog was at capacity.",
			},
			[]string{"op"},
		),
		TransferCompensationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ledger_transfer_compensations_total",
				Help: "Transfers that triggered a compensating redeposit on the sender.",
			},
		),
		WorkerReapedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ledger_workers_reaped_total",
				Help: "Worker goroutines whose Registry bookkeeping has been cleared.",
			},
		),
	}

	registerer.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.ActiveWorkers,
		m.BacklogRejectionsTotal,
		m.TransferCompensationsTotal,
		m.WorkerReapedTotal,
	)

	return m
}
