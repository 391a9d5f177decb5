// Package metrics exposes Prometheus collectors for job runs and
// notification delivery.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cronbot"

// Outcome labels for job runs.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Metrics owns a private registry so tests can create independent instances.
type Metrics struct {
	registry *prometheus.Registry

	jobRuns             *prometheus.CounterVec
	jobDuration         *prometheus.HistogramVec
	jobLastSuccess      *prometheus.GaugeVec
	notificationsFailed prometheus.Counter
	commands            *prometheus.CounterVec
}

// New creates and registers all collectors, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Job invocations by job name and outcome.",
		}, []string{"job", "outcome"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Wall time of job invocations, including notification.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		jobLastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "job_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful trigger per job.",
		}, []string{"job"}),
		notificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Administrator notifications that could not be delivered.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Chat commands handled by name.",
		}, []string{"command"}),
	}

	m.registry.MustRegister(
		m.jobRuns,
		m.jobDuration,
		m.jobLastSuccess,
		m.notificationsFailed,
		m.commands,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordJob records one job invocation.
func (m *Metrics) RecordJob(job, outcome string, d time.Duration) {
	m.jobRuns.WithLabelValues(job, outcome).Inc()
	if outcome != OutcomeSkipped {
		m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
	}
}

// RecordSuccess sets the last-success gauge for job to t.
func (m *Metrics) RecordSuccess(job string, t time.Time) {
	m.jobLastSuccess.WithLabelValues(job).Set(float64(t.Unix()))
}

// RecordNotificationFailure implements notify.FailureRecorder.
func (m *Metrics) RecordNotificationFailure() {
	m.notificationsFailed.Inc()
}

// RecordCommand counts a handled chat command.
func (m *Metrics) RecordCommand(name string) {
	m.commands.WithLabelValues(name).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler serving the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
