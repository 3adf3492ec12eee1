package validation

import (
	"fmt"

	dErrors "backupauth/pkg/domain-errors"
)

// MaxBodySize is the maximum allowed request body size (64 KB).
const MaxBodySize = 64 * 1024

// Encoded payload limits for the archive API. Both are far above what a real
// credential request or receipt presentation serializes to.
const (
	MaxCredentialRequestLength = 4096
	MaxPresentationLength      = 8192
)

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}
