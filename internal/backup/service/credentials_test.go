package service

import (
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	"backupauth/internal/backup/models"
	"backupauth/internal/backup/service/mocks"
	dErrors "backupauth/pkg/domain-errors"
	"backupauth/pkg/platform/audit"
	"backupauth/pkg/testutil"
)

// expectIssuance wires a stored commitment that deserializes into a request
// whose credentials encode the level they were issued at.
func (s *ServiceSuite) expectIssuance(commitment []byte) *mocks.MockCredentialRequest {
	req := mocks.NewMockCredentialRequest(s.ctrl)
	s.credentials.EXPECT().DeserializeRequest(commitment).Return(req, nil)
	req.EXPECT().IssueCredential(gomock.Any(), gomock.Any()).
		DoAndReturn(func(day time.Time, level models.BackupLevel) ([]byte, error) {
			return []byte(day.Format("2006-01-02") + "/" + level.String()), nil
		}).AnyTimes()
	return req
}

func (s *ServiceSuite) TestGetBackupAuthCredentials() {
	s.Run("messages tier issues one credential per day", func() {
		s.SetupTest()
		s.enroll(true, false)
		account := models.NewAccount(s.accountID).WithCommitment([]byte("r1"))
		s.accounts.EXPECT().Get(gomock.Any(), s.accountID).Return(account, nil)
		s.expectIssuance([]byte("r1"))

		creds, err := s.service.GetBackupAuthCredentials(s.ctx, s.accountID, s.day(0), s.day(7))
		s.Require().NoError(err)
		s.Require().Len(creds, 8)
		for i, c := range creds {
			s.Equal(s.day(i), c.RedemptionTime)
			s.Contains(string(c.Credential), "/"+models.LevelMessages.String())
		}
	})

	s.Run("media enrollment wins over messages", func() {
		s.SetupTest()
		s.enroll(true, true)
		account := models.NewAccount(s.accountID).WithCommitment([]byte("r1"))
		s.accounts.EXPECT().Get(gomock.Any(), s.accountID).Return(account, nil)
		s.expectIssuance([]byte("r1"))

		creds, err := s.service.GetBackupAuthCredentials(s.ctx, s.accountID, s.day(0), s.day(0))
		s.Require().NoError(err)
		s.Require().Len(creds, 1)
		s.Contains(string(creds[0].Credential), "/"+models.LevelMedia.String())
	})

	s.Run("voucher level applies on covered days only", func() {
		s.SetupTest()
		s.enroll(true, false)
		account := testutil.NewAccountBuilder().
			WithID(s.accountID).
			WithCommitment([]byte("r1")).
			WithVoucher(models.LevelMedia, s.day(1).Add(time.Second)).
			Build()
		s.accounts.EXPECT().Get(gomock.Any(), s.accountID).Return(account, nil)
		s.expectIssuance([]byte("r1"))

		creds, err := s.service.GetBackupAuthCredentials(s.ctx, s.accountID, s.day(0), s.day(3))
		s.Require().NoError(err)
		s.Require().Len(creds, 4)
		s.Contains(string(creds[0].Credential), models.LevelMedia.String())
		s.Contains(string(creds[1].Credential), models.LevelMedia.String())
		s.Contains(string(creds[2].Credential), models.LevelMessages.String())
		s.Contains(string(creds[3].Credential), models.LevelMessages.String())
	})

	s.Run("expired voucher is cleared before issuing", func() {
		s.SetupTest()
		s.enroll(true, false)
		account := testutil.NewAccountBuilder().
			WithID(s.accountID).
			WithCommitment([]byte("r1")).
			WithVoucher(models.LevelMedia, s.now.Add(-time.Minute)).
			Build()
		s.accounts.EXPECT().Get(gomock.Any(), s.accountID).Return(account, nil)
		s.expectUpdate(account)
		s.expectIssuance([]byte("r1"))

		creds, err := s.service.GetBackupAuthCredentials(s.ctx, s.accountID, s.day(0), s.day(0))
		s.Require().NoError(err)
		s.Contains(string(creds[0].Credential), models.LevelMessages.String())
		s.Contains(s.auditActions(), string(audit.EventVoucherExpired))
	})

	s.Run("voucher without enrollment is still forbidden", func() {
		s.SetupTest()
		s.enroll(false, false)
		account := testutil.NewAccountBuilder().
			WithID(s.accountID).
			WithCommitment([]byte("r1")).
			WithVoucher(models.LevelMedia, s.day(5)).
			Build()
		s.accounts.EXPECT().Get(gomock.Any(), s.accountID).Return(account, nil)

		_, err := s.service.GetBackupAuthCredentials(s.ctx, s.accountID, s.day(0), s.day(1))
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("no commitment is not found", func() {
		s.SetupTest()
		s.enroll(true, false)
		s.accounts.EXPECT().Get(gomock.Any(), s.accountID).Return(models.NewAccount(s.accountID), nil)

		_, err := s.service.GetBackupAuthCredentials(s.ctx, s.accountID, s.day(0), s.day(1))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("invalid windows are rejected", func() {
		cases := []struct {
			name       string
			start, end time.Time
		}{
			{"end before start", s.day(2), s.day(1)},
			{"start in the past", s.day(-1), s.day(1)},
			{"end past the horizon", s.day(0), s.day(8)},
			{"unaligned start", s.day(0).Add(time.Hour), s.day(1)},
			{"unaligned end", s.day(0), s.day(1).Add(time.Second)},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.SetupTest()
				s.enroll(true, false)
				account := models.NewAccount(s.accountID).WithCommitment([]byte("r1"))
				s.accounts.EXPECT().Get(gomock.Any(), s.accountID).Return(account, nil)

				_, err := s.service.GetBackupAuthCredentials(s.ctx, s.accountID, tc.start, tc.end)
				s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
				s.Equal("invalid redemption window", err.Error())
			})
		}
	})

	s.Run("corrupt stored commitment is internal", func() {
		s.SetupTest()
		s.enroll(true, false)
		account := models.NewAccount(s.accountID).WithCommitment([]byte("garbage"))
		s.accounts.EXPECT().Get(gomock.Any(), s.accountID).Return(account, nil)
		s.credentials.EXPECT().DeserializeRequest([]byte("garbage")).Return(nil, errors.New("bad encoding"))

		_, err := s.service.GetBackupAuthCredentials(s.ctx, s.accountID, s.day(0), s.day(0))
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
