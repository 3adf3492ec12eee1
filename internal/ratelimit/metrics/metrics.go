package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RateLimitChecksTotal            *prometheus.CounterVec
	RateLimitStoreErrorsTotal       *prometheus.CounterVec
	RateLimitCheckDurationSeconds   *prometheus.HistogramVec
	RateLimitCleanupPurgedTotal     *prometheus.CounterVec
	RateLimitCleanupRunsTotal       *prometheus.CounterVec
	RateLimitCleanupDurationSeconds prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		RateLimitChecksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "backupauth_ratelimit_checks_total",
			Help: "Total number of rate limit checks by descriptor and outcome",
		}, []string{"descriptor", "outcome"}),
		RateLimitStoreErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "backupauth_ratelimit_store_errors_total",
			Help: "Total number of bucket store failures during rate limit checks",
		}, []string{"descriptor"}),
		RateLimitCheckDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "backupauth_ratelimit_check_duration_seconds",
			Help:    "Duration of rate limit checks in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"descriptor"}),
		RateLimitCleanupPurgedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "backupauth_cleanup_purged_total",
			Help: "Total number of expired records purged by the cleanup worker",
		}, []string{"target"}),
		RateLimitCleanupRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "backupauth_cleanup_runs_total",
			Help: "Total number of cleanup runs",
		}, []string{"status"}),
		RateLimitCleanupDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "backupauth_cleanup_duration_seconds",
			Help: "Duration of cleanup runs in seconds",
		}),
	}
}

const (
	OutcomeAllowed  = "allowed"
	OutcomeDenied   = "denied"
	OutcomeDisabled = "disabled"
)

func (m *Metrics) IncrementCheck(descriptor, outcome string) {
	m.RateLimitChecksTotal.WithLabelValues(descriptor, outcome).Inc()
}

func (m *Metrics) IncrementStoreError(descriptor string) {
	m.RateLimitStoreErrorsTotal.WithLabelValues(descriptor).Inc()
}

func (m *Metrics) ObserveCheckDuration(descriptor string, durationSeconds float64) {
	m.RateLimitCheckDurationSeconds.WithLabelValues(descriptor).Observe(durationSeconds)
}

func (m *Metrics) IncrementCleanupPurged(target string, count int64) {
	m.RateLimitCleanupPurgedTotal.WithLabelValues(target).Add(float64(count))
}

func (m *Metrics) IncrementCleanupRuns(status string) {
	m.RateLimitCleanupRunsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveCleanupDuration(durationSeconds float64) {
	m.RateLimitCleanupDurationSeconds.Observe(durationSeconds)
}
