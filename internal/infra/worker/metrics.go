package worker

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks prewarm runs.
type Metrics struct {
	JobRunsTotal         *prometheus.CounterVec
	JobDurationSeconds   prometheus.Histogram
	ReportsTotal         *prometheus.CounterVec
	LastSuccessTimestamp prometheus.Gauge
	ArchivePrunedTotal   prometheus.Counter
}

// NewMetrics registers the worker metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		JobRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_prewarm_runs_total",
			Help: "Total number of prewarm runs by status (success/partial/failure)",
		}, []string{"status"}),
		JobDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_prewarm_duration_seconds",
			Help:    "Duration of prewarm runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		ReportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_prewarm_reports_total",
			Help: "Reports built by the prewarm worker by channel and status",
		}, []string{"channel", "status"}),
		LastSuccessTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "worker_prewarm_last_success_timestamp",
			Help: "Unix timestamp of the last prewarm run without failures",
		}),
		ArchivePrunedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "worker_archive_pruned_reports_total",
			Help: "Archived reports deleted by retention",
		}),
	}
	reg.MustRegister(m.JobRunsTotal, m.JobDurationSeconds, m.ReportsTotal, m.LastSuccessTimestamp, m.ArchivePrunedTotal)
	return m
}

// RecordRun records one finished run.
func (m *Metrics) RecordRun(status string, seconds float64) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
	m.JobDurationSeconds.Observe(seconds)
	if status == "success" {
		m.LastSuccessTimestamp.SetToCurrentTime()
	}
}

// RecordReport records one prewarmed report.
func (m *Metrics) RecordReport(channel string, ok bool) {
	status := "success"
	if !ok {
		status = "failure"
	}
	m.ReportsTotal.WithLabelValues(channel, status).Inc()
}

// RecordPruned adds n deleted archive rows.
func (m *Metrics) RecordPruned(n int64) {
	m.ArchivePrunedTotal.Add(float64(n))
}
