package circuit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewStateGauge registers backupauth_circuit_open{circuit=name} on the default
// registry. Call it once per circuit name.
func NewStateGauge(name string) prometheus.Gauge {
	return promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "backupauth_circuit_open",
		Help:        "1 while the named circuit breaker is open",
		ConstLabels: prometheus.Labels{"circuit": name},
	})
}
