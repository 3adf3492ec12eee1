package service

import (
	"context"
	"time"

	"backupauth/internal/backup/models"
	"backupauth/internal/backup/policy"
	"backupauth/internal/platform/tracer"
	id "backupauth/pkg/domain"
	dErrors "backupauth/pkg/domain-errors"
	"backupauth/pkg/platform/audit"
	"backupauth/pkg/requestcontext"
)

// GetBackupAuthCredentials issues one credential per UTC day from start to end
// inclusive. Each credential carries the voucher level when the voucher covers
// that day and the enrollment ceiling otherwise. An expired voucher found on the
// account is cleared first.
func (s *Service) GetBackupAuthCredentials(ctx context.Context, accountID id.AccountID, start, end time.Time) (creds []models.Credential, err error) {
	defer s.observe("get_credentials", time.Now())
	ctx, span := s.tracer.Start(ctx, tracer.SpanGetCredentials, tracer.String(tracer.AttrAccountID, accountID.String()))
	defer func() { span.End(err) }()

	now := requestcontext.Now(ctx)

	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, translateStoreError(err, "failed to read account")
	}

	// At most one sweep per call; the refreshed snapshot is used as-is.
	if account.HasExpiredVoucher(now) {
		account, err = s.expireVoucher(ctx, accountID, now)
		if err != nil {
			return nil, err
		}
	}

	ceiling, ok := s.policy.ConfiguredLevel(ctx, accountID)
	if !ok {
		return nil, errBackupsNotAllowed
	}

	if err := models.ValidateRedemptionWindow(start, end, now); err != nil {
		return nil, err
	}

	if !account.HasCommitment() {
		return nil, errNoCommitment
	}

	request, err := s.credentials.DeserializeRequest(account.BackupCommitment)
	if err != nil {
		s.logger.ErrorContext(ctx, "stored backup-id commitment failed to deserialize",
			"account_id", accountID.String(),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not deserialize stored request credential")
	}

	days := models.RedemptionDays(start, end)
	creds = make([]models.Credential, 0, len(days))
	issued := make(map[models.BackupLevel]int, 2)
	for _, day := range days {
		level := policy.LevelForDay(account, day, ceiling)
		credential, err := request.IssueCredential(day, level)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue credential")
		}
		creds = append(creds, models.Credential{Credential: credential, RedemptionTime: day})
		issued[level]++
	}

	span.SetAttributes(
		tracer.Int64(tracer.AttrCredentialDays, int64(len(creds))),
		tracer.String(tracer.AttrBackupLevel, ceiling.String()),
	)
	if s.metrics != nil {
		for level, n := range issued {
			s.metrics.AddCredentialsIssued(level.String(), n)
		}
	}
	s.logger.DebugContext(ctx, "issued backup credentials",
		"account_id", accountID.String(),
		"days", len(creds),
		"ceiling", ceiling.String(),
	)
	return creds, nil
}

func (s *Service) expireVoucher(ctx context.Context, accountID id.AccountID, now time.Time) (_ models.Account, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanExpireVoucher, tracer.String(tracer.AttrAccountID, accountID.String()))
	defer func() { span.End(err) }()

	cleared := false
	sweep := models.ClearExpiredVoucher(now)
	updated, err := s.accounts.Update(ctx, accountID, func(current models.Account) (models.Account, bool) {
		next, changed := sweep(current)
		cleared = changed
		return next, changed
	})
	if err != nil {
		return models.Account{}, translateStoreError(err, "failed to clear expired voucher")
	}

	if cleared {
		if s.metrics != nil {
			s.metrics.IncrementVouchersExpired()
		}
		s.audit(ctx, audit.EventVoucherExpired, accountID)
	}
	return updated, nil
}
