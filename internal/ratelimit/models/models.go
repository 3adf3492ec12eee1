package models

import (
	"time"

	dErrors "backupauth/pkg/domain-errors"
)

// Descriptor names a rate-limited action. Each descriptor has its own budget per account.
type Descriptor string

const (
	// DescriptorSetBackupID guards replacing the stored backup-id commitment.
	DescriptorSetBackupID Descriptor = "set_backup_id"
	// DescriptorRedeemReceipt guards receipt redemption.
	DescriptorRedeemReceipt Descriptor = "redeem_receipt"
)

func (d Descriptor) IsValid() bool {
	switch d {
	case DescriptorSetBackupID, DescriptorRedeemReceipt:
		return true
	}
	return false
}

func (d Descriptor) String() string {
	return string(d)
}

// ParseDescriptor validates a descriptor name read from configuration.
func ParseDescriptor(s string) (Descriptor, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "rate limit descriptor cannot be empty")
	}
	d := Descriptor(s)
	if !d.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown rate limit descriptor: "+s)
	}
	return d, nil
}

type RateLimitResult struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	// RetryAfter is only set when not allowed.
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

// NewDeniedResult builds the result for a refused request. The caller may retry once
// the oldest charge in the window ages out at resetAt.
func NewDeniedResult(limit int, resetAt, now time.Time) *RateLimitResult {
	retryAfter := resetAt.Sub(now)
	if retryAfter < 0 {
		retryAfter = 0
	}
	return &RateLimitResult{
		Allowed:    false,
		Limit:      limit,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: retryAfter,
	}
}

// NewAllowedResult builds the result for a charged request.
func NewAllowedResult(limit, used int, resetAt time.Time) *RateLimitResult {
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitResult{
		Allowed:   true,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
