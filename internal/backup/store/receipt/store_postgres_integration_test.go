//go:build integration

package receipt_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"backupauth/internal/backup/config"
	"backupauth/internal/backup/models"
	"backupauth/internal/backup/store/receipt"
	"backupauth/pkg/platform/sentinel"
	"backupauth/pkg/requestcontext"
	"backupauth/pkg/testutil"
	"backupauth/pkg/testutil/containers"
)

type PostgresLedgerSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	ledger   *receipt.PostgresLedger
}

func TestPostgresLedgerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresLedgerSuite))
}

func (s *PostgresLedgerSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.ledger = receipt.NewPostgres(s.postgres.DB)
}

func (s *PostgresLedgerSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "receipt_redemptions"))
}

func (s *PostgresLedgerSuite) TestInsertIfAbsent() {
	ctx := context.Background()
	r := testutil.NewRedemption(1, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))

	inserted, err := s.ledger.InsertIfAbsent(ctx, r)
	s.Require().NoError(err)
	s.True(inserted)

	inserted, err = s.ledger.InsertIfAbsent(ctx, r)
	s.Require().NoError(err)
	s.False(inserted)

	got, err := s.ledger.Get(ctx, r.Serial)
	s.Require().NoError(err)
	s.Equal(r.AccountID, got.AccountID)
	s.True(got.Expiration.Equal(r.Expiration))
}

func (s *PostgresLedgerSuite) TestConcurrentRedemption() {
	r := testutil.NewRedemption(9, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	result := testutil.RunConcurrent(20, func(int) error {
		inserted, err := s.ledger.InsertIfAbsent(context.Background(), r)
		if err != nil {
			return err
		}
		if !inserted {
			return sentinel.ErrAlreadyUsed
		}
		return nil
	})
	s.Equal(int32(1), result.Successes)
	s.Equal(int32(19), result.Errors)
}

func (s *PostgresLedgerSuite) TestPurgeExpired() {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	stale := testutil.NewRedemption(1, now.Add(-config.ReceiptRetention-time.Minute))
	live := testutil.NewRedemption(2, now.Add(config.Day))
	for _, r := range []models.ReceiptRedemption{stale, live} {
		_, err := s.ledger.InsertIfAbsent(ctx, r)
		s.Require().NoError(err)
	}

	purged, err := s.ledger.PurgeExpired(ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), purged)

	_, err = s.ledger.Get(ctx, stale.Serial)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
