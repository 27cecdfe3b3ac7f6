// Package metrics exposes Prometheus instrumentation for the analysis
// service. Collection happens at the server boundary; the pipeline
// itself stays metric-free.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/veridex/authenticity-analyzer/pkg/events"
	"github.com/veridex/authenticity-analyzer/pkg/pipeline"
)

// Run outcome labels.
const (
	OutcomeComplete  = "complete"
	OutcomeFailed    = "failed"
	OutcomeAbandoned = "abandoned"
)

// Metrics holds every collector the service registers.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	DetailsPersisted prometheus.Counter
	EventsEmitted    *prometheus.CounterVec
	JobsCreated      prometheus.Counter
}

// New registers the collectors against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authenticity_runs_total",
			Help: "Analysis runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "authenticity_run_duration_seconds",
			Help:    "Wall time of one analysis run.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		DetailsPersisted: factory.NewCounter(prometheus.CounterOpts{
			Name: "authenticity_details_persisted_total",
			Help: "Sub-region detail rows written.",
		}),
		EventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authenticity_events_emitted_total",
			Help: "Stream events emitted by type.",
		}, []string{"type"}),
		JobsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "authenticity_jobs_created_total",
			Help: "Analysis jobs created by upload.",
		}),
	}
}

// Default registers against the global Prometheus registry.
func Default() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

// WrapSink counts every event passing through sink, keying progress
// events into the persisted-details counter as well.
func (m *Metrics) WrapSink(sink pipeline.Sink) pipeline.Sink {
	return func(ev events.Event) error {
		m.EventsEmitted.WithLabelValues(ev.EventType()).Inc()
		if ev.EventType() == events.TypeProgress {
			m.DetailsPersisted.Inc()
		}
		return sink(ev)
	}
}

// ObserveRun records one finished run.
func (m *Metrics) ObserveRun(outcome string, seconds float64) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(seconds)
}
