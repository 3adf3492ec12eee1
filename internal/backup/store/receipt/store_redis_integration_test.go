//go:build integration

package receipt_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"backupauth/internal/backup/config"
	"backupauth/internal/backup/store/receipt"
	"backupauth/pkg/platform/sentinel"
	"backupauth/pkg/requestcontext"
	"backupauth/pkg/testutil"
	"backupauth/pkg/testutil/containers"
)

type RedisLedgerSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	ledger *receipt.RedisLedger
}

func TestRedisLedgerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLedgerSuite))
}

func (s *RedisLedgerSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.ledger = receipt.NewRedis(s.redis.Client)
}

func (s *RedisLedgerSuite) SetupTest() {
	s.Require().NoError(s.redis.Flush(context.Background()))
}

func (s *RedisLedgerSuite) TestInsertIfAbsent() {
	now := time.Now().UTC().Truncate(time.Second)
	ctx := requestcontext.WithTime(context.Background(), now)
	r := testutil.NewRedemption(1, now.Add(30*config.Day))

	inserted, err := s.ledger.InsertIfAbsent(ctx, r)
	s.Require().NoError(err)
	s.True(inserted)

	inserted, err = s.ledger.InsertIfAbsent(ctx, r)
	s.Require().NoError(err)
	s.False(inserted)

	got, err := s.ledger.Get(ctx, r.Serial)
	s.Require().NoError(err)
	s.Equal(r.AccountID, got.AccountID)
	s.Equal(r.ReceiptLevel, got.ReceiptLevel)
	s.True(got.Expiration.Equal(r.Expiration))
}

func (s *RedisLedgerSuite) TestKeyOutlivesReceiptByRetention() {
	now := time.Now().UTC()
	ctx := requestcontext.WithTime(context.Background(), now)
	r := testutil.NewRedemption(2, now.Add(time.Hour))

	_, err := s.ledger.InsertIfAbsent(ctx, r)
	s.Require().NoError(err)

	ttl, err := s.redis.Client.TTL(ctx, "receipt:"+r.Serial.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, config.ReceiptRetention)
	s.LessOrEqual(ttl, config.ReceiptRetention+time.Hour)
}

func (s *RedisLedgerSuite) TestConcurrentRedemption() {
	ctx := requestcontext.WithTime(context.Background(), time.Now())
	r := testutil.NewRedemption(3, time.Now().Add(config.Day))
	result := testutil.RunConcurrent(20, func(int) error {
		inserted, err := s.ledger.InsertIfAbsent(ctx, r)
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
