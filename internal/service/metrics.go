package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the prediction service collectors
type Metrics struct {
	// Predictions counts served recommendations.
	// Labels: source (local, remote, static), crop
	Predictions *prometheus.CounterVec

	// RemoteFailures counts remote calls that produced no usable result.
	// Labels: reason (disabled, transport, timeout, status, rejected, malformed)
	RemoteFailures *prometheus.CounterVec

	// CalculationDuration measures local calculator runs
	CalculationDuration prometheus.Histogram
}

// NewMetrics registers the collectors on reg. A nil reg means the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cropadvisor",
			Name:      "predictions_total",
			Help:      "Total recommendations served by source",
		}, []string{"source", "crop"}),
		RemoteFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cropadvisor",
			Name:      "remote_failures_total",
			Help:      "Total remote prediction failures by reason",
		}, []string{"reason"}),
		CalculationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cropadvisor",
			Name:      "calculation_duration_seconds",
			Help:      "Local calculator latency in seconds",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		}),
	}
}
