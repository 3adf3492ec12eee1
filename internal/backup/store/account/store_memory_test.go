package account

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backupauth/internal/backup/config"
	"backupauth/internal/backup/models"
	id "backupauth/pkg/domain"
	"backupauth/pkg/platform/sentinel"
	"backupauth/pkg/testutil"
)

func TestInMemoryStore_GetUnknownAccount(t *testing.T) {
	store := NewInMemoryStore()
	accountID := id.NewAccountID()

	account, err := store.Get(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, accountID, account.ID)
	assert.Zero(t, account.Version)
	assert.False(t, account.HasCommitment())
	assert.Nil(t, account.BackupVoucher)
}

func TestInMemoryStore_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("stored change bumps the version", func(t *testing.T) {
		store := NewInMemoryStore()
		accountID := id.NewAccountID()

		updated, err := store.Update(ctx, accountID, models.SetCommitment([]byte("r1")))
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated.Version)

		got, err := store.Get(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, []byte("r1"), got.BackupCommitment)
		assert.Equal(t, int64(1), got.Version)
	})

	t.Run("unchanged mutation does not write", func(t *testing.T) {
		store := NewInMemoryStore()
		accountID := id.NewAccountID()
		_, err := store.Update(ctx, accountID, models.SetCommitment([]byte("r1")))
		require.NoError(t, err)

		again, err := store.Update(ctx, accountID, models.SetCommitment([]byte("r1")))
		require.NoError(t, err)
		assert.Equal(t, int64(1), again.Version)
	})

	t.Run("returned snapshots do not alias stored state", func(t *testing.T) {
		store := NewInMemoryStore()
		accountID := id.NewAccountID()
		updated, err := store.Update(ctx, accountID, models.SetCommitment([]byte("r1")))
		require.NoError(t, err)

		updated.BackupCommitment[0] = 'x'
		got, err := store.Get(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, []byte("r1"), got.BackupCommitment)
	})

	t.Run("losing every race returns conflict", func(t *testing.T) {
		store := NewInMemoryStore()
		accountID := id.NewAccountID()
		attempts := 0
		interfere := func(current models.Account) (models.Account, bool) {
			attempts++
			// A competing writer lands between our read and our swap.
			_, err := store.Update(ctx, accountID, models.SetCommitment([]byte{byte(attempts)}))
			require.NoError(t, err)
			return current.WithCommitment([]byte("mine")), true
		}

		_, err := store.Update(ctx, accountID, interfere)
		require.ErrorIs(t, err, sentinel.ErrConflict)
		assert.Equal(t, config.MaxUpdateAttempts, attempts)
	})

	t.Run("cancelled context stops the update", func(t *testing.T) {
		store := NewInMemoryStore()
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := store.Update(cctx, id.NewAccountID(), models.SetCommitment([]byte("r1")))
		require.ErrorIs(t, err, context.Canceled)
	})
}

// Concurrent redemptions must leave the latest-expiring voucher in place no
// matter how the updates interleave.
func TestInMemoryStore_ConcurrentVoucherMerge(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	accountID := id.NewAccountID()
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	var mu sync.Mutex
	var latest time.Time
	result := testutil.RunConcurrent(20, func(idx int) error {
		expiration := base.Add(time.Duration(idx) * config.Day)
		voucher := models.BackupVoucher{ReceiptLevel: models.LevelMedia.ReceiptLevel(), Expiration: expiration}
		if _, err := store.Update(ctx, accountID, models.ApplyVoucher(voucher, nil)); err != nil {
			return err
		}
		mu.Lock()
		if expiration.After(latest) {
			latest = expiration
		}
		mu.Unlock()
		return nil
	})

	assert.Equal(t, int32(20), result.Successes+result.Conflicts)
	assert.Zero(t, result.Errors)
	require.Positive(t, result.Successes)

	got, err := store.Get(ctx, accountID)
	require.NoError(t, err)
	require.NotNil(t, got.BackupVoucher)
	assert.True(t, got.BackupVoucher.Expiration.Equal(latest),
		"stored %s, latest successful %s", got.BackupVoucher.Expiration, latest)
}
