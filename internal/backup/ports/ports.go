// Package ports defines the collaborators the backup service depends on.
package ports

import (
	"context"
	"time"

	"backupauth/internal/backup/models"
	rlmodels "backupauth/internal/ratelimit/models"
	id "backupauth/pkg/domain"
)

// EnrollmentOracle reports experiment membership.
type EnrollmentOracle interface {
	IsEnrolled(ctx context.Context, accountID id.AccountID, experiment string) bool
}

// RateLimiter charges a per-key budget. An exhausted budget is reported as an
// *admission.RetryableError.
type RateLimiter interface {
	CheckAndCharge(ctx context.Context, descriptor rlmodels.Descriptor, key string) error
}

// AccountStore holds the backup fields of accounts.
// Error Contract:
//   - Get returns an empty snapshot (Version 0) for an account never written
//   - Update returns sentinel.ErrConflict when every attempt lost a race
type AccountStore interface {
	Get(ctx context.Context, accountID id.AccountID) (models.Account, error)
	// Update reads the current snapshot, applies mutate and compares-and-swaps on
	// Version, retrying on conflict. It returns the stored snapshot.
	Update(ctx context.Context, accountID id.AccountID, mutate models.Mutation) (models.Account, error)
}

// ReceiptLedger records redeemed receipt serials.
type ReceiptLedger interface {
	// InsertIfAbsent atomically records the redemption. inserted is false when the
	// serial was already present.
	InsertIfAbsent(ctx context.Context, redemption models.ReceiptRedemption) (inserted bool, err error)
}

// CredentialRequest is a deserialized blinded backup-id commitment.
type CredentialRequest interface {
	Serialize() []byte
	// IssueCredential mints the credential redeemable on redemptionTime at level.
	IssueCredential(redemptionTime time.Time, level models.BackupLevel) ([]byte, error)
}

// CredentialOperations turns stored or submitted bytes back into a request.
type CredentialOperations interface {
	DeserializeRequest(raw []byte) (CredentialRequest, error)
}

// ReceiptVerifier checks a receipt presentation and returns what it proves.
type ReceiptVerifier interface {
	VerifyReceiptPresentation(presentation []byte) (models.Receipt, error)
}
