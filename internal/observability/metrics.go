package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the engine.
type Metrics struct {
	Turns             *prometheus.CounterVec
	BackendErrors     *prometheus.CounterVec
	SimulatedResults  *prometheus.CounterVec
	GenerationLatency prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Turns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Conversation turns by mode and outcome.",
		}, []string{"mode", "outcome"}),
		BackendErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_errors_total",
			Help:      "External backend errors by backend and classification.",
		}, []string{"backend", "kind"}),
		SimulatedResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulated_results_total",
			Help:      "Degraded speech results by gateway.",
		}, []string{"gateway"}),
		GenerationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_latency_ms",
			Help:      "Completion backend latency in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 4000, 8000},
		}),
	}
}

// ObserveTurn records one turn. Nil-safe so call sites don't have to guard.
func (m *Metrics) ObserveTurn(mode, outcome string) {
	if m == nil {
		return
	}
	m.Turns.WithLabelValues(mode, outcome).Inc()
}

// ObserveBackendError records one classified backend failure.
func (m *Metrics) ObserveBackendError(backend, kind string) {
	if m == nil {
		return
	}
	m.BackendErrors.WithLabelValues(backend, kind).Inc()
}

// ObserveSimulated records one degraded speech result.
func (m *Metrics) ObserveSimulated(gateway string) {
	if m == nil {
		return
	}
	m.SimulatedResults.WithLabelValues(gateway).Inc()
}

// ObserveGenerationLatency records one completion round trip.
func (m *Metrics) ObserveGenerationLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.GenerationLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
