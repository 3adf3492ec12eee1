package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts audit events by outcome and action.
type Metrics struct {
	persisted *prometheus.CounterVec
	failed    *prometheus.CounterVec
	dropped   *prometheus.CounterVec
}

// NewMetrics registers the audit counters on the default registry.
func NewMetrics() *Metrics {
	return newMetrics(promauto.With(prometheus.DefaultRegisterer))
}

func newMetrics(factory promauto.Factory) *Metrics {
	return &Metrics{
		persisted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "backupauth_audit_events_persisted_total",
			Help: "Audit events written to the audit store",
		}, []string{"action"}),
		failed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "backupauth_audit_events_failed_total",
			Help: "Audit events the audit store rejected",
		}, []string{"action"}),
		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "backupauth_audit_events_dropped_total",
			Help: "Audit events dropped because the queue was full",
		}, []string{"action"}),
	}
}
