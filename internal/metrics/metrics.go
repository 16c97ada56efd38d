// Package metrics exposes Prometheus instruments for the sweeper.
//
// Instruments are registered on the default registry at init through
// promauto, and Handler serves them on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "datasweeper"

// Run outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeUnsupported = "unsupported"
	OutcomeError       = "error"
)

var (
	filesUploaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "files_uploaded_total",
		Help:      "Files added to sessions, by detected format.",
	}, []string{"format"})

	runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_runs_total",
		Help:      "Per-file pipeline runs, by outcome.",
	}, []string{"outcome"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_run_duration_seconds",
		Help:      "Time spent running the pipeline for one file.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	})

	runsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_runs_rejected_total",
		Help:      "Runs rejected because every run slot was busy.",
	})

	cleanActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clean_actions_total",
		Help:      "Clean actions triggered, by action.",
	}, []string{"action"})

	downloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "downloads_total",
		Help:      "Converted files downloaded, by format.",
	}, []string{"format"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Sessions currently held in memory.",
	})
)

// FileUploaded counts one uploaded file. Unsupported files use format "".
func FileUploaded(format string) {
	if format == "" {
		format = "unsupported"
	}
	filesUploaded.WithLabelValues(format).Inc()
}

// ObserveRun records the outcome and duration of one pipeline run.
func ObserveRun(outcome string, d time.Duration) {
	runs.WithLabelValues(outcome).Inc()
	runDuration.Observe(d.Seconds())
}

// RunRejected counts a run refused by the run limiter.
func RunRejected() {
	runsRejected.Inc()
}

// CleanAction counts a triggered clean action.
func CleanAction(action string) {
	cleanActions.WithLabelValues(action).Inc()
}

// Downloaded counts a served download.
func Downloaded(format string) {
	downloads.WithLabelValues(format).Inc()
}

// SetActiveSessions reports the current session count.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
