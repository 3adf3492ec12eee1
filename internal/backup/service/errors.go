package service

import (
	"errors"

	"backupauth/pkg/admission"
	dErrors "backupauth/pkg/domain-errors"
	"backupauth/pkg/platform/sentinel"
)

var (
	errBackupsNotAllowed = dErrors.New(dErrors.CodeForbidden, "backups not allowed on account")
	errNoCommitment      = dErrors.New(dErrors.CodeNotFound, "no blinded backup-id has been added to the account")
	errVerification      = dErrors.New(dErrors.CodeInvalidInput, "receipt credential presentation verification failed")
	errReceiptExpired    = dErrors.New(dErrors.CodeInvalidInput, "receipt is already expired")
	errReceiptLevel      = dErrors.New(dErrors.CodeInvalidInput, "server does not recognize the requested receipt level")
	errAlreadyRedeemed   = dErrors.New(dErrors.CodeInvalidInput, "receipt serial is already redeemed")
	errInvalidRequest    = dErrors.New(dErrors.CodeInvalidInput, "invalid backup auth credential request")
)

// translateStoreError maps store failures onto domain errors. Admission errors
// and domain errors pass through unchanged.
func translateStoreError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if _, ok := admission.As(err); ok {
		return err
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "account was modified concurrently, retry the request")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
