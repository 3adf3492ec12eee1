// Package admission defines the error returned when a caller is refused because a
// rate limit budget is exhausted, and how that refusal is carried on the wire.
//
// gRPC callers see codes.ResourceExhausted with a "retry-after" metadata entry holding
// an ISO-8601 duration (for example "PT7M"). HTTP callers see 429, or 413 for the
// legacy status family, with a Retry-After header in whole seconds.
package admission

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/sosodev/duration"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RetryAfterKey is the gRPC metadata key carrying the retry hint.
const RetryAfterKey = "retry-after"

// RetryableError reports that the request was refused for now and may be retried.
// RetryAfter is nil when no hint is known.
type RetryableError struct {
	RetryAfter *time.Duration
	// Legacy selects the older HTTP status (413) used by pre-429 clients.
	Legacy bool
	// Descriptor names the limit that refused the request, for logs and metrics.
	Descriptor string
}

// New returns a RetryableError carrying retryAfter. A non-positive value means no hint.
func New(descriptor string, retryAfter time.Duration) *RetryableError {
	e := &RetryableError{Descriptor: descriptor}
	if retryAfter > 0 {
		e.RetryAfter = &retryAfter
	}
	return e
}

func (e *RetryableError) Error() string {
	if e.RetryAfter == nil {
		return "rate limit exceeded"
	}
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter.String())
}

// GRPCStatus lets status.FromError and status.Code recognise the error directly.
func (e *RetryableError) GRPCStatus() *status.Status {
	return status.New(codes.ResourceExhausted, e.Error())
}

// Metadata returns the trailer to attach to a gRPC response, or nil when there is no hint.
func (e *RetryableError) Metadata() metadata.MD {
	if e.RetryAfter == nil {
		return nil
	}
	return metadata.Pairs(RetryAfterKey, FormatRetryAfter(*e.RetryAfter))
}

// HTTPStatus returns 429, or 413 when Legacy is set.
func (e *RetryableError) HTTPStatus() int {
	if e.Legacy {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusTooManyRequests
}

// RetryAfterHeader renders the hint as whole seconds, rounded up.
func (e *RetryableError) RetryAfterHeader() (string, bool) {
	if e.RetryAfter == nil {
		return "", false
	}
	secs := int64(math.Ceil(e.RetryAfter.Seconds()))
	if secs < 0 {
		secs = 0
	}
	return strconv.FormatInt(secs, 10), true
}

// As reports whether err wraps a RetryableError.
func As(err error) (*RetryableError, bool) {
	var re *RetryableError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// FormatRetryAfter renders d as an ISO-8601 duration truncated to whole seconds.
func FormatRetryAfter(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return duration.FromTimeDuration(d.Truncate(time.Second)).String()
}

// ParseRetryAfter parses an ISO-8601 duration such as "PT7M".
func ParseRetryAfter(s string) (time.Duration, error) {
	d, err := duration.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("parse retry-after %q: %w", s, err)
	}
	return d.ToTimeDuration(), nil
}

// RetryAfterFromMetadata extracts the retry hint a server attached to a response.
// The boolean is false when the key is absent.
func RetryAfterFromMetadata(md metadata.MD) (time.Duration, bool, error) {
	values := md.Get(RetryAfterKey)
	if len(values) == 0 {
		return 0, false, nil
	}
	d, err := ParseRetryAfter(values[0])
	if err != nil {
		return 0, true, err
	}
	return d, true, nil
}
