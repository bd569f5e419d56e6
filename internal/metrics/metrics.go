// Package metrics exports check outcomes in the Prometheus text format so a
// node_exporter textfile collector can pick them up.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamik/preflight/internal/result"
)

// Recorder collects the outcome of one preflight run.
type Recorder struct {
	registry *prometheus.Registry

	entries  *prometheus.CounterVec
	success  *prometheus.GaugeVec
	duration *prometheus.GaugeVec
	lastRun  *prometheus.GaugeVec
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		entries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "preflight",
				Subsystem: "check",
				Name:      "entries_total",
				Help:      "Number of check entries by check, status and reason",
			},
			[]string{"check", "status", "reason"},
		),
		success: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "preflight",
				Subsystem: "check",
				Name:      "success",
				Help:      "1 if the check produced no failures, 0 otherwise",
			},
			[]string{"check"},
		),
		duration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "preflight",
				Subsystem: "check",
				Name:      "duration_seconds",
				Help:      "Wall time of the last run of the check",
			},
			[]string{"check"},
		),
		lastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "preflight",
				Subsystem: "check",
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the check last completed",
			},
			[]string{"check"},
		),
	}
	r.registry.MustRegister(r.entries, r.success, r.duration, r.lastRun)
	return r
}

// Observe records the entries of res under the check name.
func (r *Recorder) Observe(check string, res *result.Result, took time.Duration) {
	for _, e := range res.Entries {
		r.entries.WithLabelValues(check, string(e.Status), string(e.Reason)).Inc()
	}
	ok := 0.0
	if res.OK() {
		ok = 1
	}
	r.success.WithLabelValues(check).Set(ok)
	r.duration.WithLabelValues(check).Set(took.Seconds())
	r.lastRun.WithLabelValues(check).SetToCurrentTime()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteFile atomically writes the metrics to path.
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
