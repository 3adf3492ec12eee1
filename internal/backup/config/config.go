// Package config holds the thresholds of the backup credential flows.
package config

import "time"

const (
	// Day is the credential granularity. Redemption times are UTC day boundaries.
	Day = 24 * time.Hour

	// MaxRedemptionDuration bounds how far past the start of today a credential
	// window may end.
	MaxRedemptionDuration = 7 * Day

	// MaxUpdateAttempts bounds the optimistic read-modify-write loop on an account.
	MaxUpdateAttempts = 5

	// ReceiptRetention is how long a redeemed serial is kept after the receipt
	// itself expires. An expired receipt is rejected before the ledger is consulted,
	// so the row only needs to outlive the receipt.
	ReceiptRetention = Day
)

// Experiment names consulted by the enrollment oracle.
const (
	ExperimentBackup      = "backup"
	ExperimentBackupMedia = "backupMedia"
)
