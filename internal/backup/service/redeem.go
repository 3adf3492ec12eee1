package service

import (
	"context"
	"strconv"
	"time"

	"backupauth/internal/backup/metrics"
	"backupauth/internal/backup/models"
	"backupauth/internal/platform/tracer"
	rlmodels "backupauth/internal/ratelimit/models"
	"backupauth/pkg/admission"
	id "backupauth/pkg/domain"
	"backupauth/pkg/platform/audit"
	"backupauth/pkg/requestcontext"
)

// RedeemReceipt verifies a receipt presentation, records its serial in the ledger
// and merges the receipt into the account's voucher. A serial can be redeemed once
// across all accounts.
func (s *Service) RedeemReceipt(ctx context.Context, accountID id.AccountID, presentation []byte) (err error) {
	defer s.observe("redeem_receipt", time.Now())
	ctx, span := s.tracer.Start(ctx, tracer.SpanRedeemReceipt, tracer.String(tracer.AttrAccountID, accountID.String()))
	defer func() { span.End(err) }()

	receipt, err := s.receipts.VerifyReceiptPresentation(presentation)
	if err != nil {
		s.logger.InfoContext(ctx, "receipt presentation rejected",
			"account_id", accountID.String(),
			"error", err,
		)
		s.rejectReceipt(ctx, accountID, "verification_failed")
		return errVerification
	}
	span.SetAttributes(tracer.Int64(tracer.AttrReceiptLevel, receipt.ReceiptLevel))

	now := requestcontext.Now(ctx)
	if now.After(receipt.Expiration) {
		s.rejectReceipt(ctx, accountID, "expired")
		return errReceiptExpired
	}
	if level, ok := models.FromReceiptLevel(receipt.ReceiptLevel); !ok || !level.IsPurchasable() {
		s.rejectReceipt(ctx, accountID, "unrecognized_level")
		return errReceiptLevel
	}

	if err := s.limiter.CheckAndCharge(ctx, rlmodels.DescriptorRedeemReceipt, accountID.String()); err != nil {
		if _, ok := admission.As(err); ok {
			s.recordRedemption(metrics.OutcomeThrottled)
		} else {
			s.recordRedemption(metrics.OutcomeError)
		}
		return translateStoreError(err, "failed to check rate limit")
	}

	inserted, err := s.ledger.InsertIfAbsent(ctx, models.NewReceiptRedemption(receipt, accountID))
	if err != nil {
		s.recordRedemption(metrics.OutcomeError)
		return translateStoreError(err, "failed to record receipt redemption")
	}
	if !inserted {
		s.recordRedemption(metrics.OutcomeDuplicate)
		s.audit(ctx, audit.EventReceiptRejected, accountID,
			"reason", "already_redeemed",
			"receipt_serial", receipt.Serial.String(),
		)
		return errAlreadyRedeemed
	}

	next := models.BackupVoucher{ReceiptLevel: receipt.ReceiptLevel, Expiration: receipt.Expiration}
	var kept *models.BackupVoucher
	_, err = s.accounts.Update(ctx, accountID, func(current models.Account) (models.Account, bool) {
		kept = nil
		return models.ApplyVoucher(next, func(v models.BackupVoucher) { kept = &v })(current)
	})
	if err != nil {
		s.recordRedemption(metrics.OutcomeError)
		s.logger.ErrorContext(ctx, "receipt recorded but voucher update failed",
			"account_id", accountID.String(),
			"receipt_serial", receipt.Serial.String(),
			"error", err,
		)
		return translateStoreError(err, "failed to update backup voucher")
	}

	if kept != nil {
		s.logger.WarnContext(ctx, "redeemed receipt expires before the voucher already held",
			"account_id", accountID.String(),
			"receipt_expiration", receipt.Expiration,
			"voucher_expiration", kept.Expiration,
		)
		if s.metrics != nil {
			s.metrics.IncrementMergeAnomalies()
		}
		s.audit(ctx, audit.EventVoucherAnomaly, accountID,
			"receipt_serial", receipt.Serial.String(),
			"receipt_expiration", receipt.Expiration.UTC().Format(time.RFC3339),
			"voucher_expiration", kept.Expiration.UTC().Format(time.RFC3339),
		)
	}

	s.recordRedemption(metrics.OutcomeStored)
	s.audit(ctx, audit.EventReceiptRedeemed, accountID,
		"receipt_serial", receipt.Serial.String(),
		"receipt_level", strconv.FormatInt(receipt.ReceiptLevel, 10),
		"expiration", receipt.Expiration.UTC().Format(time.RFC3339),
	)
	return nil
}

func (s *Service) rejectReceipt(ctx context.Context, accountID id.AccountID, reason string) {
	s.recordRedemption(metrics.OutcomeInvalid)
	s.audit(ctx, audit.EventReceiptRejected, accountID, "reason", reason)
}

func (s *Service) recordRedemption(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementRedemption(outcome)
	}
}
