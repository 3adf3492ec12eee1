// Package requestcontext carries request-scoped values (time, request ID, caller
// identity) through context.Context so services never read them from transport types.
package requestcontext

import (
	"context"
	"time"

	id "backupauth/pkg/domain"
)

type (
	timeKey      struct{}
	requestIDKey struct{}
	accountIDKey struct{}
	clientIPKey  struct{}
	platformKey  struct{}
)

// Now returns the request-scoped time, falling back to time.Now() outside a request
// (workers, CLI, tests that did not inject a time).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(timeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins "now" for everything downstream of ctx.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, timeKey{}, t)
}

func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// AccountID returns the authenticated account, or the zero ID when the request is anonymous.
func AccountID(ctx context.Context) id.AccountID {
	if v, ok := ctx.Value(accountIDKey{}).(id.AccountID); ok {
		return v
	}
	return id.AccountID{}
}

func WithAccountID(ctx context.Context, accountID id.AccountID) context.Context {
	return context.WithValue(ctx, accountIDKey{}, accountID)
}

func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientPlatform is the coarse client label set by the metadata middleware.
func ClientPlatform(ctx context.Context) string {
	if v, ok := ctx.Value(platformKey{}).(string); ok {
		return v
	}
	return ""
}

func WithClientPlatform(ctx context.Context, platform string) context.Context {
	return context.WithValue(ctx, platformKey{}, platform)
}
