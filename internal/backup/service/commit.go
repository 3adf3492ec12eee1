package service

import (
	"context"
	"crypto/subtle"
	"time"

	"backupauth/internal/backup/metrics"
	"backupauth/internal/backup/models"
	"backupauth/internal/backup/ports"
	"backupauth/internal/platform/tracer"
	rlmodels "backupauth/internal/ratelimit/models"
	"backupauth/pkg/admission"
	id "backupauth/pkg/domain"
	dErrors "backupauth/pkg/domain-errors"
	"backupauth/pkg/platform/audit"
)

// ParseCredentialRequest deserializes a submitted credential request. Malformed
// bytes are the caller's fault and map to invalid_input.
func (s *Service) ParseCredentialRequest(raw []byte) (ports.CredentialRequest, error) {
	if len(raw) == 0 {
		return nil, errInvalidRequest
	}
	req, err := s.credentials.DeserializeRequest(raw)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, errInvalidRequest.Error())
	}
	return req, nil
}

// CommitBackupID stores the blinded backup-id the account will later request
// credentials for. Re-submitting the stored request is a no-op that neither charges
// the set_backup_id budget nor writes.
func (s *Service) CommitBackupID(ctx context.Context, accountID id.AccountID, request ports.CredentialRequest) (err error) {
	defer s.observe("commit_backup_id", time.Now())
	ctx, span := s.tracer.Start(ctx, tracer.SpanCommitBackupID, tracer.String(tracer.AttrAccountID, accountID.String()))
	defer func() { span.End(err) }()

	if _, ok := s.policy.ConfiguredLevel(ctx, accountID); !ok {
		s.recordCommit(metrics.OutcomeForbidden)
		return errBackupsNotAllowed
	}

	serialized := request.Serialize()

	current, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		s.recordCommit(metrics.OutcomeError)
		return translateStoreError(err, "failed to read account")
	}
	if current.HasCommitment() && subtle.ConstantTimeCompare(serialized, current.BackupCommitment) == 1 {
		s.recordCommit(metrics.OutcomeUnchanged)
		return nil
	}

	if err := s.limiter.CheckAndCharge(ctx, rlmodels.DescriptorSetBackupID, accountID.String()); err != nil {
		if _, ok := admission.As(err); ok {
			s.recordCommit(metrics.OutcomeThrottled)
		} else {
			s.recordCommit(metrics.OutcomeError)
		}
		return translateStoreError(err, "failed to check rate limit")
	}

	if _, err := s.accounts.Update(ctx, accountID, models.SetCommitment(serialized)); err != nil {
		s.recordCommit(metrics.OutcomeError)
		return translateStoreError(err, "failed to store backup-id")
	}

	s.recordCommit(metrics.OutcomeStored)
	s.audit(ctx, audit.EventBackupIDCommitted, accountID,
		"replaced", current.HasCommitment(),
	)
	return nil
}

func (s *Service) recordCommit(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementCommit(outcome)
	}
}

func (s *Service) audit(ctx context.Context, event audit.AuditEvent, accountID id.AccountID, attrs ...any) {
	if s.auditLogger != nil {
		s.auditLogger.Log(ctx, event, accountID, attrs...)
	}
}
