package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the CLI's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	PollAttempts    *prometheus.CounterVec
	Registrations   *prometheus.CounterVec
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wau",
			Name:      "registry_requests_total",
			Help:      "Registry API requests by operation and outcome.",
		}, []string{"op", "outcome"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wau",
			Name:      "registry_request_duration_seconds",
			Help:      "Registry API request latency in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"op"}),

		PollAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wau",
			Name:      "status_poll_attempts_total",
			Help:      "Status poll attempts by result (pending, terminal, transient).",
		}, []string{"result"}),

		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wau",
			Name:      "registrations_total",
			Help:      "Registration attempts by final outcome.",
		}, []string{"outcome"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRequest records one registry API call.
func (m *Metrics) ObserveRequest(op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(op, outcome).Inc()
	m.RequestDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ObservePoll records one status poll.
func (m *Metrics) ObservePoll(result string) {
	if m == nil {
		return
	}
	m.PollAttempts.WithLabelValues(result).Inc()
}

// ObserveRegistration records the outcome of a registration attempt.
func (m *Metrics) ObserveRegistration(outcome string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(outcome).Inc()
}

// WriteFile writes all metrics to path in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
