package models

import "time"

// BackupVoucher is the paid entitlement recorded on an account after a receipt
// redemption.
type BackupVoucher struct {
	ReceiptLevel int64
	Expiration   time.Time
}

// Level returns the voucher's backup level, or LevelNone when the stored receipt
// level is not recognized.
func (v BackupVoucher) Level() BackupLevel {
	level, _ := FromReceiptLevel(v.ReceiptLevel)
	return level
}

// ExpiredAt reports whether the voucher no longer applies at now.
func (v BackupVoucher) ExpiredAt(now time.Time) bool {
	return now.After(v.Expiration)
}

// Covers reports whether the voucher still applies to a credential redeemable on day.
func (v BackupVoucher) Covers(day time.Time) bool {
	return !day.After(v.Expiration)
}

// Equal compares level and expiration instant, ignoring time zone.
func (v BackupVoucher) Equal(other BackupVoucher) bool {
	return v.ReceiptLevel == other.ReceiptLevel && v.Expiration.Equal(other.Expiration)
}

// MergeVoucher resolves the voucher to store when next is redeemed on top of prev.
//
//   - no previous voucher: next
//   - different receipt level: next, the newer purchase supersedes
//   - same level: whichever expires later
//
// anomalous is true when prev is kept because it outlasts next, which happens when
// an old receipt is reused or the validity period was shortened.
func MergeVoucher(prev *BackupVoucher, next BackupVoucher) (resolved BackupVoucher, anomalous bool) {
	if prev == nil {
		return next, false
	}
	if next.ReceiptLevel != prev.ReceiptLevel {
		return next, false
	}
	if prev.Expiration.After(next.Expiration) {
		return *prev, true
	}
	return next, false
}
