package audit

import (
	"context"
	"time"

	id "backupauth/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	AccountID id.AccountID      `json:"account_id"`
	Action    string            `json:"action"`
	Reason    string            `json:"reason,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// Store is the append-only sink behind the publisher.
type Store interface {
	Append(ctx context.Context, event Event) error
}

type AuditEvent string

const (
	EventBackupIDCommitted AuditEvent = "backup_id_committed"
	EventCredentialsIssued AuditEvent = "backup_credentials_issued"
	EventReceiptRedeemed   AuditEvent = "backup_receipt_redeemed"
	EventReceiptRejected   AuditEvent = "backup_receipt_rejected"
	EventVoucherExpired    AuditEvent = "backup_voucher_expired"
	EventVoucherAnomaly    AuditEvent = "backup_voucher_anomaly"
	EventRateLimitExceeded AuditEvent = "rate_limit_exceeded"
)
