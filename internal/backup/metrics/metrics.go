package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	BackupIDCommitsTotal       *prometheus.CounterVec
	CredentialsIssuedTotal     *prometheus.CounterVec
	ReceiptRedemptionsTotal    *prometheus.CounterVec
	VouchersExpiredTotal       prometheus.Counter
	VoucherMergeAnomaliesTotal prometheus.Counter
	OperationLatency           *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		BackupIDCommitsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "backupauth_backup_id_commits_total",
			Help: "Backup-id commit attempts by outcome",
		}, []string{"outcome"}),
		CredentialsIssuedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "backupauth_credentials_issued_total",
			Help: "Credentials issued by backup level",
		}, []string{"level"}),
		ReceiptRedemptionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "backupauth_receipt_redemptions_total",
			Help: "Receipt redemption attempts by outcome",
		}, []string{"outcome"}),
		VouchersExpiredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "backupauth_vouchers_expired_total",
			Help: "Expired vouchers cleared during credential requests",
		}),
		VoucherMergeAnomaliesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "backupauth_voucher_merge_anomalies_total",
			Help: "Redemptions whose receipt expired before the voucher already held",
		}),
		OperationLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "backupauth_operation_duration_seconds",
			Help:    "Latency of backup service operations",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}
}

// Outcome labels shared by commit and redemption counters.
const (
	OutcomeStored    = "stored"
	OutcomeUnchanged = "unchanged"
	OutcomeForbidden = "forbidden"
	OutcomeThrottled = "throttled"
	OutcomeInvalid   = "invalid"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

func (m *Metrics) IncrementCommit(outcome string) {
	m.BackupIDCommitsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddCredentialsIssued(level string, count int) {
	m.CredentialsIssuedTotal.WithLabelValues(level).Add(float64(count))
}

func (m *Metrics) IncrementRedemption(outcome string) {
	m.ReceiptRedemptionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementVouchersExpired() {
	m.VouchersExpiredTotal.Inc()
}

func (m *Metrics) IncrementMergeAnomalies() {
	m.VoucherMergeAnomaliesTotal.Inc()
}

func (m *Metrics) ObserveOperation(operation string, durationSeconds float64) {
	m.OperationLatency.WithLabelValues(operation).Observe(durationSeconds)
}
