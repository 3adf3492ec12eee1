package tracer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"backupauth/pkg/admission"
	dErrors "backupauth/pkg/domain-errors"
)

// InstrumentationName is the OpenTelemetry instrumentation scope.
const InstrumentationName = "backupauth"

// OTelTracer emits spans through an OpenTelemetry tracer.
type OTelTracer struct {
	tracer trace.Tracer
}

type OTelOption func(*OTelTracer)

// WithOTelTracer replaces the global provider's tracer.
func WithOTelTracer(t trace.Tracer) OTelOption {
	return func(o *OTelTracer) { o.tracer = t }
}

func NewOTel(opts ...OTelOption) *OTelTracer {
	t := &OTelTracer{tracer: otel.Tracer(InstrumentationName)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *OTelTracer) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, otelSpan{span}
}

type otelSpan struct {
	trace.Span
}

// End marks the span failed only for errors the server is responsible for.
// Refusals such as rate limits and bad input are tagged with their code but
// leave the span status unset.
func (s otelSpan) End(err error) {
	if err != nil {
		code := dErrors.CodeOf(err)
		if _, refused := admission.As(err); refused {
			code = "rate_limited"
		}
		s.Span.SetAttributes(String("error.code", string(code)))
		if serverFault(code) {
			s.Span.RecordError(err)
			s.Span.SetStatus(codes.Error, err.Error())
		}
	}
	s.Span.End()
}

func (s otelSpan) AddEvent(name string, attrs ...Attribute) {
	s.Span.AddEvent(name, trace.WithAttributes(attrs...))
}

func serverFault(code dErrors.Code) bool {
	switch code {
	case dErrors.CodeInternal, dErrors.CodeTimeout:
		return true
	}
	return false
}

var (
	_ Tracer = (*OTelTracer)(nil)
	_ Span   = otelSpan{}
)
