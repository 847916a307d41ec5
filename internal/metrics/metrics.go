// Package metrics holds the Prometheus counters updated by the polling loop.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups the bridge counters on their own registry so tests and
// multiple bridges never collide on the global one.
type Metrics struct {
	Registry         *prometheus.Registry
	LinesRead        prometheus.Counter
	LinesMalformed   prometheus.Counter
	ReadErrors       prometheus.Counter
	Delivered        prometheus.Counter
	DeliveryFailures prometheus.Counter
}

// New registers the bridge counters on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		LinesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sensorbridge", Name: "lines_read_total",
			Help: "Lines received from the sensor board, including empty reads.",
		}),
		LinesMalformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sensorbridge", Name: "lines_malformed_total",
			Help: "Lines discarded because they did not match the sensor format.",
		}),
		ReadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sensorbridge", Name: "read_errors_total",
			Help: "Serial read failures other than timeouts.",
		}),
		Delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sensorbridge", Name: "readings_delivered_total",
			Help: "Readings accepted by every sink.",
		}),
		DeliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sensorbridge", Name: "delivery_failures_total",
			Help: "Readings that at least one sink failed to deliver.",
		}),
	}
	m.Registry.MustRegister(m.LinesRead, m.LinesMalformed, m.ReadErrors, m.Delivered, m.DeliveryFailures)
	return m
}
