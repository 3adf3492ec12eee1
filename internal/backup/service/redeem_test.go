package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	"backupauth/internal/backup/models"
	rlmodels "backupauth/internal/ratelimit/models"
	"backupauth/pkg/admission"
	id "backupauth/pkg/domain"
	dErrors "backupauth/pkg/domain-errors"
	"backupauth/pkg/platform/audit"
)

func (s *ServiceSuite) receipt(serial byte, level models.BackupLevel, expiration time.Time) models.Receipt {
	var sn id.ReceiptSerial
	sn[0] = serial
	return models.Receipt{Serial: sn, Expiration: expiration, ReceiptLevel: level.ReceiptLevel()}
}

func (s *ServiceSuite) TestRedeemReceipt() {
	s.Run("valid receipt stores the voucher", func() {
		s.SetupTest()
		receipt := s.receipt(1, models.LevelMedia, s.day(30))
		s.receipts.EXPECT().VerifyReceiptPresentation([]byte("p1")).Return(receipt, nil)
		s.limiter.EXPECT().CheckAndCharge(gomock.Any(), rlmodels.DescriptorRedeemReceipt, s.accountID.String()).Return(nil)
		s.ledger.EXPECT().InsertIfAbsent(gomock.Any(), models.NewReceiptRedemption(receipt, s.accountID)).Return(true, nil)

		var stored models.Account
		current := models.NewAccount(s.accountID)
		s.accounts.EXPECT().Update(gomock.Any(), s.accountID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.AccountID, mutate models.Mutation) (models.Account, error) {
				stored, _ = mutate(current)
				return stored, nil
			})

		s.Require().NoError(s.service.RedeemReceipt(s.ctx, s.accountID, []byte("p1")))
		s.Require().NotNil(stored.BackupVoucher)
		s.Equal(models.LevelMedia.ReceiptLevel(), stored.BackupVoucher.ReceiptLevel)
		s.True(stored.BackupVoucher.Expiration.Equal(s.day(30)))
		s.Contains(s.auditActions(), string(audit.EventReceiptRedeemed))
	})

	s.Run("failed verification is invalid input", func() {
		s.SetupTest()
		s.receipts.EXPECT().VerifyReceiptPresentation([]byte("bad")).Return(models.Receipt{}, errors.New("bad proof"))

		err := s.service.RedeemReceipt(s.ctx, s.accountID, []byte("bad"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.Equal("receipt credential presentation verification failed", err.Error())
	})

	s.Run("expired receipt is rejected before charging", func() {
		s.SetupTest()
		s.receipts.EXPECT().VerifyReceiptPresentation(gomock.Any()).
			Return(s.receipt(1, models.LevelMedia, s.now.Add(-time.Second)), nil)
		s.limiter.EXPECT().CheckAndCharge(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		err := s.service.RedeemReceipt(s.ctx, s.accountID, []byte("p1"))
		s.ErrorIs(err, errReceiptExpired)
	})

	s.Run("receipt expiring exactly now is accepted", func() {
		s.SetupTest()
		receipt := s.receipt(1, models.LevelMedia, s.now)
		s.receipts.EXPECT().VerifyReceiptPresentation(gomock.Any()).Return(receipt, nil)
		s.limiter.EXPECT().CheckAndCharge(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		s.ledger.EXPECT().InsertIfAbsent(gomock.Any(), gomock.Any()).Return(true, nil)
		s.expectUpdate(models.NewAccount(s.accountID))

		s.NoError(s.service.RedeemReceipt(s.ctx, s.accountID, []byte("p1")))
	})

	s.Run("non purchasable level is rejected", func() {
		s.SetupTest()
		s.receipts.EXPECT().VerifyReceiptPresentation(gomock.Any()).
			Return(s.receipt(1, models.LevelMessages, s.day(30)), nil)

		err := s.service.RedeemReceipt(s.ctx, s.accountID, []byte("p1"))
		s.ErrorIs(err, errReceiptLevel)
	})

	s.Run("unknown level is rejected", func() {
		s.SetupTest()
		s.receipts.EXPECT().VerifyReceiptPresentation(gomock.Any()).
			Return(models.Receipt{ReceiptLevel: 999, Expiration: s.day(30)}, nil)

		err := s.service.RedeemReceipt(s.ctx, s.accountID, []byte("p1"))
		s.ErrorIs(err, errReceiptLevel)
	})

	s.Run("throttled redemption does not touch the ledger", func() {
		s.SetupTest()
		s.receipts.EXPECT().VerifyReceiptPresentation(gomock.Any()).
			Return(s.receipt(1, models.LevelMedia, s.day(30)), nil)
		s.limiter.EXPECT().CheckAndCharge(gomock.Any(), rlmodels.DescriptorRedeemReceipt, gomock.Any()).
			Return(admission.New("redeem_receipt", time.Minute))
		s.ledger.EXPECT().InsertIfAbsent(gomock.Any(), gomock.Any()).Times(0)

		err := s.service.RedeemReceipt(s.ctx, s.accountID, []byte("p1"))
		_, ok := admission.As(err)
		s.True(ok)
	})

	s.Run("second redemption of a serial is rejected", func() {
		s.SetupTest()
		s.receipts.EXPECT().VerifyReceiptPresentation(gomock.Any()).
			Return(s.receipt(1, models.LevelMedia, s.day(30)), nil)
		s.limiter.EXPECT().CheckAndCharge(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		s.ledger.EXPECT().InsertIfAbsent(gomock.Any(), gomock.Any()).Return(false, nil)
		s.accounts.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		err := s.service.RedeemReceipt(s.ctx, s.accountID, []byte("p1"))
		s.ErrorIs(err, errAlreadyRedeemed)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("earlier expiring receipt keeps the voucher and flags the anomaly", func() {
		s.SetupTest()
		existing := &models.BackupVoucher{ReceiptLevel: models.LevelMedia.ReceiptLevel(), Expiration: s.day(60)}
		current := models.NewAccount(s.accountID).WithVoucher(existing)
		s.receipts.EXPECT().VerifyReceiptPresentation(gomock.Any()).
			Return(s.receipt(2, models.LevelMedia, s.day(30)), nil)
		s.limiter.EXPECT().CheckAndCharge(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		s.ledger.EXPECT().InsertIfAbsent(gomock.Any(), gomock.Any()).Return(true, nil)

		var stored models.Account
		s.accounts.EXPECT().Update(gomock.Any(), s.accountID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.AccountID, mutate models.Mutation) (models.Account, error) {
				next, changed := mutate(current)
				s.False(changed)
				stored = next
				return next, nil
			})

		s.Require().NoError(s.service.RedeemReceipt(s.ctx, s.accountID, []byte("p1")))
		s.True(stored.BackupVoucher.Expiration.Equal(s.day(60)))
		s.Contains(s.auditActions(), string(audit.EventVoucherAnomaly))
	})

	s.Run("voucher update failure after ledger insert is internal", func() {
		s.SetupTest()
		s.receipts.EXPECT().VerifyReceiptPresentation(gomock.Any()).
			Return(s.receipt(1, models.LevelMedia, s.day(30)), nil)
		s.limiter.EXPECT().CheckAndCharge(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		s.ledger.EXPECT().InsertIfAbsent(gomock.Any(), gomock.Any()).Return(true, nil)
		s.accounts.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.Account{}, errors.New("db down"))

		err := s.service.RedeemReceipt(s.ctx, s.accountID, []byte("p1"))
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
