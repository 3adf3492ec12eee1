// Package resilient guards a primary audit sink with a circuit breaker. Once the
// primary keeps failing, events go to a fallback sink until probes succeed again.
package resilient

import (
	"context"
	"fmt"
	"log/slog"

	audit "backupauth/pkg/platform/audit"
	"backupauth/pkg/platform/circuit"
)

// Store implements audit.Store over a primary and a fallback sink.
type Store struct {
	primary  audit.Store
	fallback audit.Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBreaker replaces the default breaker, which opens after five consecutive
// failures, probes every ten seconds and closes after three successful probes.
func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Store) {
		if b != nil {
			s.breaker = b
		}
	}
}

func New(primary, fallback audit.Store, opts ...Option) *Store {
	s := &Store{
		primary:  primary,
		fallback: fallback,
		breaker:  circuit.New("audit_sink"),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append writes to the primary unless the breaker is cooling down. A failure while
// the circuit is closed is returned to the caller.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if !s.breaker.Allow() {
		return s.appendFallback(ctx, event, nil)
	}

	err := s.primary.Append(ctx, event)
	if err == nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "circuit breaker closed", "circuit", s.breaker.Name())
		}
		return nil
	}

	useFallback, change := s.breaker.RecordFailure()
	if change.Opened {
		s.logger.ErrorContext(ctx, "circuit breaker opened",
			"circuit", s.breaker.Name(),
			"error", err,
		)
	}
	if !useFallback {
		return err
	}
	return s.appendFallback(ctx, event, err)
}

func (s *Store) appendFallback(ctx context.Context, event audit.Event, primaryErr error) error {
	if err := s.fallback.Append(ctx, event); err != nil {
		if primaryErr != nil {
			return fmt.Errorf("primary: %w; fallback: %w", primaryErr, err)
		}
		return fmt.Errorf("fallback: %w", err)
	}
	s.logger.WarnContext(ctx, "audit event written to fallback sink",
		"circuit", s.breaker.Name(),
		"action", event.Action,
	)
	return nil
}
