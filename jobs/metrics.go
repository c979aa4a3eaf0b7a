package jobs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks background job executions.
type Metrics struct {
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers job collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timekeeper_job_runs_total",
			Help: "Background job runs by task and outcome.",
		}, []string{"task", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timekeeper_job_failures_total",
			Help: "Background job failures by task.",
		}, []string{"task"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "timekeeper_job_duration_seconds",
			Help:    "Background job duration by task.",
			Buckets: prometheus.DefBuckets,
		}, []string{"task"}),
	}
	reg.MustRegister(m.runs, m.failures, m.duration)
	return m
}

// Tracker times a single job run.
type Tracker struct {
	metrics *Metrics
	task    string
	start   time.Time
}

// Track begins timing a run of the named task. Safe on a nil Metrics.
func (m *Metrics) Track(task string) *Tracker {
	if m == nil {
		return nil
	}
	return &Tracker{metrics: m, task: task, start: time.Now()}
}

// End records the run outcome and passes the error through.
func (t *Tracker) End(err error) error {
	if t == nil {
		return err
	}
	status := "ok"
	if err != nil {
		status = "error"
		t.metrics.failures.WithLabelValues(t.task).Inc()
	}
	t.metrics.runs.WithLabelValues(t.task, status).Inc()
	t.metrics.duration.WithLabelValues(t.task).Observe(time.Since(t.start).Seconds())
	return err
}
