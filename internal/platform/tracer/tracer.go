// Package tracer is a small tracing abstraction so services emit spans without
// importing OpenTelemetry directly.
//
// Implementations:
//   - NoopTracer: for tests
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, marking it failed when err is non-nil.
	// End must be called exactly once, typically via defer.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is an OpenTelemetry key-value pair. Callers build them with the
// helpers below so they never import the attribute package.
type Attribute = attribute.KeyValue

func String(key, value string) Attribute { return attribute.String(key, value) }

func Bool(key string, value bool) Attribute { return attribute.Bool(key, value) }

func Int64(key string, value int64) Attribute { return attribute.Int64(key, value) }

// Duration records value in whole milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return attribute.Int64(key, value.Milliseconds())
}

// Span names used by the backup service.
const (
	SpanCommitBackupID  = "backup.commit_backup_id"
	SpanGetCredentials  = "backup.get_credentials"
	SpanRedeemReceipt   = "backup.redeem_receipt"
	SpanExpireVoucher   = "backup.expire_voucher"
	SpanRateLimitCharge = "ratelimit.check_and_charge"
)

// Attribute keys used by the backup service.
const (
	AttrAccountID      = "account_id"
	AttrBackupLevel    = "backup_level"
	AttrCredentialDays = "credential_days"
	AttrReceiptLevel   = "receipt_level"
	AttrDescriptor     = "ratelimit.descriptor"
)
