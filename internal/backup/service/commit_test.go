package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	"backupauth/internal/backup/models"
	"backupauth/internal/backup/service/mocks"
	rlmodels "backupauth/internal/ratelimit/models"
	"backupauth/pkg/admission"
	id "backupauth/pkg/domain"
	dErrors "backupauth/pkg/domain-errors"
	"backupauth/pkg/platform/audit"
	"backupauth/pkg/platform/sentinel"
)

func (s *ServiceSuite) newRequest(serialized []byte) *mocks.MockCredentialRequest {
	req := mocks.NewMockCredentialRequest(s.ctrl)
	req.EXPECT().Serialize().Return(serialized).AnyTimes()
	return req
}

func (s *ServiceSuite) TestCommitBackupID() {
	s.Run("not enrolled is forbidden without charging", func() {
		s.SetupTest()
		s.enroll(false, false)

		err := s.service.CommitBackupID(s.ctx, s.accountID, s.newRequest([]byte("r1")))
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("first commit charges and stores", func() {
		s.SetupTest()
		s.enroll(true, false)
		current := models.NewAccount(s.accountID)
		s.accounts.EXPECT().Get(gomock.Any(), s.accountID).Return(current, nil)
		s.limiter.EXPECT().CheckAndCharge(gomock.Any(), rlmodels.DescriptorSetBackupID, s.accountID.String()).Return(nil)

		var stored models.Account
		s.accounts.EXPECT().Update(gomock.Any(), s.accountID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.AccountID, mutate models.Mutation) (models.Account, error) {
				next, changed := mutate(current)
				s.True(changed)
				stored = next
				return next, nil
			})

		s.Require().NoError(s.service.CommitBackupID(s.ctx, s.accountID, s.newRequest([]byte("r1"))))
		s.Equal([]byte("r1"), stored.BackupCommitment)
		s.Contains(s.auditActions(), string(audit.EventBackupIDCommitted))
	})

	s.Run("identical request is a no-op without charge or write", func() {
		s.SetupTest()
		s.enroll(true, false)
		current := models.NewAccount(s.accountID).WithCommitment([]byte("r1"))
		s.accounts.EXPECT().Get(gomock.Any(), s.accountID).Return(current, nil)
		s.limiter.EXPECT().CheckAndCharge(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		s.accounts.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		s.NoError(s.service.CommitBackupID(s.ctx, s.accountID, s.newRequest([]byte("r1"))))
		s.NoError(s.service.CommitBackupID(s.ctx, s.accountID, s.newRequest([]byte("r1"))))
		s.Empty(s.auditActions())
	})

	s.Run("different request replaces after charging", func() {
		s.SetupTest()
		s.enroll(false, true)
		current := models.NewAccount(s.accountID).WithCommitment([]byte("r1"))
		s.accounts.EXPECT().Get(gomock.Any(), s.accountID).Return(current, nil)
		s.limiter.EXPECT().CheckAndCharge(gomock.Any(), rlmodels.DescriptorSetBackupID, s.accountID.String()).Return(nil)
		s.expectUpdate(current)

		s.NoError(s.service.CommitBackupID(s.ctx, s.accountID, s.newRequest([]byte("r2"))))
	})

	s.Run("exhausted budget propagates the retryable error", func() {
		s.SetupTest()
		s.enroll(true, false)
		s.accounts.EXPECT().Get(gomock.Any(), s.accountID).Return(models.NewAccount(s.accountID), nil)
		s.limiter.EXPECT().CheckAndCharge(gomock.Any(), rlmodels.DescriptorSetBackupID, gomock.Any()).
			Return(admission.New("set_backup_id", 7*time.Minute))
		s.accounts.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		err := s.service.CommitBackupID(s.ctx, s.accountID, s.newRequest([]byte("r1")))
		retryable, ok := admission.As(err)
		s.Require().True(ok)
		s.Equal(7*time.Minute, *retryable.RetryAfter)
	})

	s.Run("store read failure is internal", func() {
		s.SetupTest()
		s.enroll(true, false)
		s.accounts.EXPECT().Get(gomock.Any(), s.accountID).Return(models.Account{}, errors.New("db down"))

		err := s.service.CommitBackupID(s.ctx, s.accountID, s.newRequest([]byte("r1")))
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("exhausted update retries surface as conflict", func() {
		s.SetupTest()
		s.enroll(true, false)
		s.accounts.EXPECT().Get(gomock.Any(), s.accountID).Return(models.NewAccount(s.accountID), nil)
		s.limiter.EXPECT().CheckAndCharge(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		s.accounts.EXPECT().Update(gomock.Any(), s.accountID, gomock.Any()).Return(models.Account{}, sentinel.ErrConflict)

		err := s.service.CommitBackupID(s.ctx, s.accountID, s.newRequest([]byte("r1")))
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *ServiceSuite) TestParseCredentialRequest() {
	s.Run("malformed bytes are invalid input", func() {
		s.SetupTest()
		s.credentials.EXPECT().DeserializeRequest([]byte("junk")).Return(nil, errors.New("bad encoding"))

		_, err := s.service.ParseCredentialRequest([]byte("junk"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("empty bytes never reach the library", func() {
		s.SetupTest()
		_, err := s.service.ParseCredentialRequest(nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("valid bytes return the request", func() {
		s.SetupTest()
		req := s.newRequest([]byte("r1"))
		s.credentials.EXPECT().DeserializeRequest([]byte("r1")).Return(req, nil)

		got, err := s.service.ParseCredentialRequest([]byte("r1"))
		s.Require().NoError(err)
		s.Equal([]byte("r1"), got.Serialize())
	})
}
