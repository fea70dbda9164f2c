// Package metrics exposes Prometheus collectors for the computation
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the pipeline metrics.
type Collector struct {
	Computations        *prometheus.CounterVec
	ExecutionDuration   *prometheus.HistogramVec
	ClassifierFallbacks prometheus.Counter
	TierFailures        *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewCollector creates and registers the collectors on a private registry
// so repeated construction in tests does not panic.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	return newCollectorWith(reg)
}

func newCollectorWith(reg *prometheus.Registry) *Collector {
	c := &Collector{
		Computations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantum_computations_total",
				Help: "Total quantum computations by operation and backend kind",
			},
			[]string{"operation", "backend_kind"},
		),
		ExecutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantum_execution_duration_seconds",
				Help:    "Circuit execution duration in seconds",
				Buckets: []float64{.01, .05, .1, .5, 1, 5, 15, 60, 120},
			},
			[]string{"backend_kind"},
		),
		ClassifierFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "quantum_classifier_fallbacks_total",
				Help: "Classifications served by the deterministic fallback",
			},
		),
		TierFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantum_tier_failures_total",
				Help: "Execution tier failures by tier name",
			},
			[]string{"tier"},
		),
	}
	reg.MustRegister(c.Computations, c.ExecutionDuration, c.ClassifierFallbacks, c.TierFailures)
	c.registry = reg
	return c
}

// Handler serves the collector's registry over HTTP.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
