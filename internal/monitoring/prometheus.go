package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector handles Prometheus metrics collection and reporting
type MetricsCollector struct {
	registry *prometheus.Registry
	metrics  map[string]prometheus.Collector
}

// NewMetricsCollector creates a new metrics collector with its own registry.
func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	chatTurns := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Chat turns processed, by detected intent",
		},
		[]string{"intent"},
	)

	checkouts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkouts_total",
			Help: "Checkout attempts by outcome",
		},
		[]string{"outcome"},
	)

	backendUp := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "backend_up",
			Help: "Whether the ordering backend answered its last health probe",
		},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Latency of calls to the ordering backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	activeSessions := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Chat sessions currently held in the registry",
		},
	)

	metrics := map[string]prometheus.Collector{
		"chat_turns":       chatTurns,
		"checkouts":        checkouts,
		"backend_up":       backendUp,
		"request_duration": requestDuration,
		"active_sessions":  activeSessions,
	}

	for _, metric := range metrics {
		registry.MustRegister(metric)
	}

	return &MetricsCollector{
		registry: registry,
		metrics:  metrics,
	}
}

// Handler serves the collector's registry over HTTP.
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{})
}

// RecordChatTurn counts one processed chat turn.
func (mc *MetricsCollector) RecordChatTurn(intent string) {
	if counter, ok := mc.metrics["chat_turns"].(*prometheus.CounterVec); ok {
		if intent == "" {
			intent = "unknown"
		}
		counter.WithLabelValues(intent).Inc()
	}
}

// RecordCheckout counts a checkout attempt by outcome.
func (mc *MetricsCollector) RecordCheckout(outcome string) {
	if counter, ok := mc.metrics["checkouts"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(outcome).Inc()
	}
}

// SetBackendUp records the latest health probe result.
func (mc *MetricsCollector) SetBackendUp(up bool) {
	if gauge, ok := mc.metrics["backend_up"].(prometheus.Gauge); ok {
		if up {
			gauge.Set(1)
		} else {
			gauge.Set(0)
		}
	}
}

// ObserveRequest records the latency of one backend call.
func (mc *MetricsCollector) ObserveRequest(operation string, d time.Duration) {
	if histogram, ok := mc.metrics["request_duration"].(*prometheus.HistogramVec); ok {
		histogram.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// SetActiveSessions records the current registry size.
func (mc *MetricsCollector) SetActiveSessions(n int) {
	if gauge, ok := mc.metrics["active_sessions"].(prometheus.Gauge); ok {
		gauge.Set(float64(n))
	}
}
