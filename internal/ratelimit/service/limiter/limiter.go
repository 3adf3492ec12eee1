// Package limiter charges per-account rate limit budgets for named descriptors.
//
// Usage:
//
//	l, _ := limiter.New(bucketStore, limiter.WithConfig(cfg))
//	if err := l.CheckAndCharge(ctx, models.DescriptorSetBackupID, accountID.String()); err != nil {
//	    // *admission.RetryableError when the budget is exhausted
//	}
//
// A charge is consumed as soon as it is allowed and is never refunded, even when the
// operation it guarded fails later.
package limiter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"backupauth/internal/platform/tracer"
	"backupauth/internal/ratelimit/config"
	"backupauth/internal/ratelimit/metrics"
	"backupauth/internal/ratelimit/models"
	"backupauth/pkg/admission"
	dErrors "backupauth/pkg/domain-errors"
	"backupauth/pkg/platform/audit"
	"backupauth/pkg/requestcontext"
)

// BucketStore checks rate limits using sliding window counters.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// Limiter enforces per-descriptor budgets. Safe for concurrent use.
type Limiter struct {
	buckets     BucketStore
	auditLogger *audit.Logger
	logger      *slog.Logger
	config      *config.Config
	metrics     *metrics.Metrics
	tracer      tracer.Tracer
}

// Option configures a Limiter instance.
type Option func(*Limiter)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithAuditLogger records refusals as rate_limit_exceeded audit events.
func WithAuditLogger(auditLogger *audit.Logger) Option {
	return func(l *Limiter) {
		l.auditLogger = auditLogger
	}
}

// WithConfig overrides the default rate limit configuration.
func WithConfig(cfg *config.Config) Option {
	return func(l *Limiter) {
		if cfg != nil {
			l.config = cfg
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(l *Limiter) {
		if t != nil {
			l.tracer = t
		}
	}
}

// New creates a limiter over the given bucket store.
func New(buckets BucketStore, opts ...Option) (*Limiter, error) {
	if buckets == nil {
		return nil, errors.New("buckets store is required")
	}

	l := &Limiter{
		buckets: buckets,
		logger:  slog.Default(),
		config:  config.DefaultConfig(),
		tracer:  tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// CheckAndCharge consumes one unit of the descriptor's budget for key. It returns an
// *admission.RetryableError when the budget is exhausted, and an internal_error when
// the bucket store fails. Disabled descriptors always pass without touching the store.
func (l *Limiter) CheckAndCharge(ctx context.Context, descriptor models.Descriptor, key string) (err error) {
	ctx, span := l.tracer.Start(ctx, tracer.SpanRateLimitCharge, tracer.String(tracer.AttrDescriptor, descriptor.String()))
	defer func() {
		// A refusal is an expected outcome, not a span failure.
		if _, ok := admission.As(err); ok {
			span.SetAttributes(tracer.Bool("ratelimit.refused", true))
			span.End(nil)
			return
		}
		span.End(err)
	}()

	if !descriptor.IsValid() {
		return dErrors.New(dErrors.CodeInternal, "unknown rate limit descriptor: "+descriptor.String())
	}

	limit := l.config.GetAccountLimit(descriptor)
	if limit.Disabled() {
		l.recordCheck(descriptor, metrics.OutcomeDisabled)
		return nil
	}

	start := time.Now()
	bucketKey := models.NewAccountKey(key, descriptor)
	result, err := l.buckets.Allow(ctx, bucketKey.String(), limit.RequestsPerWindow, limit.Window)
	if l.metrics != nil {
		l.metrics.ObserveCheckDuration(descriptor.String(), time.Since(start).Seconds())
	}
	if err != nil {
		if l.metrics != nil {
			l.metrics.IncrementStoreError(descriptor.String())
		}
		l.logger.ErrorContext(ctx, "rate limit check failed",
			"descriptor", descriptor.String(),
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check rate limit")
	}

	if result.Allowed {
		l.recordCheck(descriptor, metrics.OutcomeAllowed)
		return nil
	}

	l.recordCheck(descriptor, metrics.OutcomeDenied)
	if l.auditLogger != nil {
		l.auditLogger.Log(ctx, audit.EventRateLimitExceeded, requestcontext.AccountID(ctx),
			"descriptor", descriptor.String(),
			"identifier", key,
			"limit", limit.RequestsPerWindow,
			"window_seconds", int(limit.Window.Seconds()),
			"retry_after_seconds", int(result.RetryAfter.Seconds()),
		)
	}

	refusal := admission.New(descriptor.String(), result.RetryAfter)
	refusal.Legacy = limit.Legacy
	return refusal
}

func (l *Limiter) recordCheck(descriptor models.Descriptor, outcome string) {
	if l.metrics != nil {
		l.metrics.IncrementCheck(descriptor.String(), outcome)
	}
}
