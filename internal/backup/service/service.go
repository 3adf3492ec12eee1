// Package service implements the backup credential flows: committing a blinded
// backup-id, issuing daily credentials and redeeming purchase receipts.
//
// The service holds no locks. Account changes go through AccountStore.Update with
// pure mutations, and receipt double-spend protection rests on the ledger's atomic
// InsertIfAbsent.
package service

import (
	"errors"
	"log/slog"
	"time"

	"backupauth/internal/backup/metrics"
	"backupauth/internal/backup/policy"
	"backupauth/internal/backup/ports"
	"backupauth/internal/platform/tracer"
	"backupauth/pkg/platform/audit"
)

type Service struct {
	accounts    ports.AccountStore
	ledger      ports.ReceiptLedger
	limiter     ports.RateLimiter
	credentials ports.CredentialOperations
	receipts    ports.ReceiptVerifier
	policy      *policy.Policy
	logger      *slog.Logger
	auditLogger *audit.Logger
	metrics     *metrics.Metrics
	tracer      tracer.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuditLogger(auditLogger *audit.Logger) Option {
	return func(s *Service) {
		s.auditLogger = auditLogger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// Dependencies groups the required collaborators.
type Dependencies struct {
	Accounts    ports.AccountStore
	Ledger      ports.ReceiptLedger
	Limiter     ports.RateLimiter
	Enrollment  ports.EnrollmentOracle
	Credentials ports.CredentialOperations
	Receipts    ports.ReceiptVerifier
}

func New(deps Dependencies, opts ...Option) (*Service, error) {
	switch {
	case deps.Accounts == nil:
		return nil, errors.New("account store is required")
	case deps.Ledger == nil:
		return nil, errors.New("receipt ledger is required")
	case deps.Limiter == nil:
		return nil, errors.New("rate limiter is required")
	case deps.Enrollment == nil:
		return nil, errors.New("enrollment oracle is required")
	case deps.Credentials == nil:
		return nil, errors.New("credential operations are required")
	case deps.Receipts == nil:
		return nil, errors.New("receipt verifier is required")
	}

	s := &Service{
		accounts:    deps.Accounts,
		ledger:      deps.Ledger,
		limiter:     deps.Limiter,
		credentials: deps.Credentials,
		receipts:    deps.Receipts,
		policy:      policy.New(deps.Enrollment),
		logger:      slog.Default(),
		tracer:      tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) observe(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(operation, time.Since(start).Seconds())
	}
}
