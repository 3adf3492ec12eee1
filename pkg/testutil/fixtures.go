package testutil

import (
	"time"

	"github.com/google/uuid"

	"backupauth/internal/backup/models"
	id "backupauth/pkg/domain"
)

// TestIDs provides convenient pre-generated IDs for tests.
// Use these for deterministic test data.
var TestIDs = struct {
	AccountID1 id.AccountID
	AccountID2 id.AccountID
}{
	AccountID1: id.AccountID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	AccountID2: id.AccountID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
}

// AccountBuilder provides a fluent interface for building account snapshots.
type AccountBuilder struct {
	account models.Account
}

// NewAccountBuilder starts from an account with no backup state.
func NewAccountBuilder() *AccountBuilder {
	return &AccountBuilder{account: models.NewAccount(TestIDs.AccountID1)}
}

func (b *AccountBuilder) WithID(accountID id.AccountID) *AccountBuilder {
	b.account.ID = accountID
	return b
}

func (b *AccountBuilder) WithCommitment(commitment []byte) *AccountBuilder {
	b.account.BackupCommitment = commitment
	return b
}

func (b *AccountBuilder) WithVoucher(level models.BackupLevel, expiration time.Time) *AccountBuilder {
	b.account.BackupVoucher = &models.BackupVoucher{ReceiptLevel: level.ReceiptLevel(), Expiration: expiration}
	return b
}

func (b *AccountBuilder) WithVersion(version int64) *AccountBuilder {
	b.account.Version = version
	return b
}

func (b *AccountBuilder) Build() models.Account {
	return b.account.Clone()
}

// NewRedemption builds a MEDIA ledger entry for a fresh account whose serial
// starts with the given byte.
func NewRedemption(serial byte, expiration time.Time) models.ReceiptRedemption {
	var sn id.ReceiptSerial
	sn[0] = serial
	return models.ReceiptRedemption{
		Serial:       sn,
		Expiration:   expiration,
		ReceiptLevel: models.LevelMedia.ReceiptLevel(),
		AccountID:    id.NewAccountID(),
	}
}
