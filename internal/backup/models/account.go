package models

import (
	"bytes"
	"time"

	id "backupauth/pkg/domain"
)

// Account is an immutable snapshot of the backup fields of an account. Version
// increases on every stored change and is zero for an account never written.
type Account struct {
	ID               id.AccountID
	BackupCommitment []byte
	BackupVoucher    *BackupVoucher
	Version          int64
}

// NewAccount returns the snapshot of an account with no backup state.
func NewAccount(accountID id.AccountID) Account {
	return Account{ID: accountID}
}

// Mutation derives the next snapshot from the current one. It must be pure: the
// store may call it several times while resolving conflicts. changed is false when
// the current snapshot already satisfies the mutation and nothing should be written.
type Mutation func(current Account) (next Account, changed bool)

// Clone returns a deep copy so callers never share the commitment or voucher.
func (a Account) Clone() Account {
	out := a
	if a.BackupCommitment != nil {
		out.BackupCommitment = bytes.Clone(a.BackupCommitment)
	}
	if a.BackupVoucher != nil {
		v := *a.BackupVoucher
		out.BackupVoucher = &v
	}
	return out
}

func (a Account) HasCommitment() bool {
	return a.BackupCommitment != nil
}

// HasExpiredVoucher reports whether the account holds a voucher that lapsed before now.
func (a Account) HasExpiredVoucher(now time.Time) bool {
	return a.BackupVoucher != nil && a.BackupVoucher.ExpiredAt(now)
}

// StoredLevel returns the voucher level if a voucher covers day.
func (a Account) StoredLevel(day time.Time) (BackupLevel, bool) {
	if a.BackupVoucher == nil || !a.BackupVoucher.Covers(day) {
		return LevelNone, false
	}
	level := a.BackupVoucher.Level()
	return level, level != LevelNone
}

func (a Account) WithCommitment(commitment []byte) Account {
	out := a.Clone()
	out.BackupCommitment = bytes.Clone(commitment)
	return out
}

func (a Account) WithVoucher(v *BackupVoucher) Account {
	out := a.Clone()
	if v == nil {
		out.BackupVoucher = nil
		return out
	}
	cp := *v
	out.BackupVoucher = &cp
	return out
}

// SetCommitment stores commitment unless the account already holds the same bytes.
func SetCommitment(commitment []byte) Mutation {
	return func(current Account) (Account, bool) {
		if current.BackupCommitment != nil && bytes.Equal(current.BackupCommitment, commitment) {
			return current, false
		}
		return current.WithCommitment(commitment), true
	}
}

// ClearExpiredVoucher drops the voucher if it has lapsed at now. The expiry is
// checked against the snapshot being mutated, so a voucher refreshed by a
// concurrent redemption survives.
func ClearExpiredVoucher(now time.Time) Mutation {
	return func(current Account) (Account, bool) {
		if !current.HasExpiredVoucher(now) {
			return current, false
		}
		return current.WithVoucher(nil), true
	}
}

// ApplyVoucher merges next into the current voucher. onAnomaly, when non-nil, is
// called with the kept voucher if the merge keeps a later-expiring previous one.
func ApplyVoucher(next BackupVoucher, onAnomaly func(kept BackupVoucher)) Mutation {
	return func(current Account) (Account, bool) {
		resolved, anomalous := MergeVoucher(current.BackupVoucher, next)
		if anomalous && onAnomaly != nil {
			onAnomaly(resolved)
		}
		if current.BackupVoucher != nil && current.BackupVoucher.Equal(resolved) {
			return current, false
		}
		return current.WithVoucher(&resolved), true
	}
}
