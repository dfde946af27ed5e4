// Package metrics provides internal metrics collection for the triage
// service. This package is internal and should not be imported by external
// projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the Prometheus instruments for the triage pipeline.
type Collector struct {
	triageRequestsTotal *prometheus.CounterVec
	triageDuration      *prometheus.HistogramVec

	extractionsTotal   *prometheus.CounterVec
	extractionFailures *prometheus.CounterVec

	inferenceDuration prometheus.Histogram
}

// NewCollector creates a collector registered on reg. Passing a fresh
// registry per instance keeps tests free of duplicate-registration panics.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		triageRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "triage_requests_total",
				Help:      "Total triage requests by terminal state",
			},
			[]string{"state"},
		),
		triageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "triage_request_duration_seconds",
				Help:      "Triage request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"state"},
		),
		extractionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lab_extractions_total",
				Help:      "Total lab extraction attempts by outcome",
			},
			[]string{"outcome"},
		),
		extractionFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lab_extraction_failures_total",
				Help:      "Lab extraction failures by error kind",
			},
			[]string{"kind"},
		),
		inferenceDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "local_inference_duration_seconds",
				Help:      "Local inference round-trip duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
	}
}

// ObserveTriage records one completed triage request.
func (c *Collector) ObserveTriage(state string, duration time.Duration) {
	c.triageRequestsTotal.WithLabelValues(state).Inc()
	c.triageDuration.WithLabelValues(state).Observe(duration.Seconds())
}

// ObserveExtraction records one extraction attempt. kind is empty on success.
func (c *Collector) ObserveExtraction(outcome, kind string) {
	c.extractionsTotal.WithLabelValues(outcome).Inc()
	if kind != "" {
		c.extractionFailures.WithLabelValues(kind).Inc()
	}
}

// ObserveInference records one local inference round-trip.
func (c *Collector) ObserveInference(duration time.Duration) {
	c.inferenceDuration.Observe(duration.Seconds())
}
