package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "marketplace_realtime"

// Причины потери кадра.
const (
	DropQueueFull   = "queue_full"
	DropClosed      = "closed"
	DropRateLimited = "rate_limited"
)

// Metrics — prometheus.Collector для realtime-слоя.
type Metrics struct {
	connections prometheus.Gauge
	events      *prometheus.CounterVec
	delivered   prometheus.Counter
	dropped     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		connections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "connections",
				Help:      "The number of admitted real-time connections.",
			},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "events_total",
				Help:      "Inbound events by kind and outcome.",
			}, []string{"event", "outcome"},
		),
		delivered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "deliveries_total",
				Help:      "Frames queued for delivery to room members.",
			},
		),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "dropped_total",
				Help:      "Frames dropped by reason.",
			}, []string{"reason"},
		),
	}
}

// Describe реализует prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.connections.Describe(ch)
	m.events.Describe(ch)
	m.delivered.Describe(ch)
	m.dropped.Describe(ch)
}

// Collect реализует prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.connections.Collect(ch)
	m.events.Collect(ch)
	m.delivered.Collect(ch)
	m.dropped.Collect(ch)
}

func (m *Metrics) event(kind Kind, outcome string) {
	if _, known := routes[kind]; !known {
		kind = "unknown"
	}
	m.events.WithLabelValues(string(kind), outcome).Inc()
}
