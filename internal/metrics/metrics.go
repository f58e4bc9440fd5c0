// Package metrics provides Prometheus metrics for the snapshot pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/ports/driven"
)

// Ensure Metrics implements the pipeline observer port.
var _ driven.RunObserver = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	FilesTotal     *prometheus.CounterVec
	SnapshotsTotal *prometheus.CounterVec
	RunsTotal      *prometheus.CounterVec
	RunDuration    prometheus.Histogram

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		FilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapnote_files_total",
				Help: "Files seen by the pipeline, by kind and category.",
			},
			[]string{"kind", "category"},
		),
		SnapshotsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapnote_snapshots_total",
				Help: "Snapshot build outcomes.",
			},
			[]string{"outcome"},
		),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapnote_runs_total",
				Help: "Completed pipeline runs by result.",
			},
			[]string{"result"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "snapnote_run_duration_seconds",
				Help:    "Wall time of pipeline runs.",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
		registry: reg,
	}

	reg.MustRegister(m.FilesTotal)
	reg.MustRegister(m.SnapshotsTotal)
	reg.MustRegister(m.RunsTotal)
	reg.MustRegister(m.RunDuration)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// FileProcessed records one categorized file.
func (m *Metrics) FileProcessed(kind domain.FileKind, category domain.Category) {
	m.FilesTotal.WithLabelValues(string(kind), string(category)).Inc()
}

// SnapshotOutcome records one snapshot build outcome.
func (m *Metrics) SnapshotOutcome(outcome domain.BuildOutcome) {
	m.SnapshotsTotal.WithLabelValues(string(outcome)).Inc()
}

// RunCompleted records one finished run.
func (m *Metrics) RunCompleted(_ string, failed bool, duration time.Duration) {
	result := "ok"
	if failed {
		result = "failed"
	}
	m.RunsTotal.WithLabelValues(result).Inc()
	m.RunDuration.Observe(duration.Seconds())
}
