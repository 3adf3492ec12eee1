package models

import (
	"time"

	"backupauth/internal/backup/config"
	dErrors "backupauth/pkg/domain-errors"
)

// StartOfDay truncates t to the enclosing UTC day boundary.
func StartOfDay(t time.Time) time.Time {
	return t.UTC().Truncate(config.Day)
}

// IsDayAligned reports whether t sits exactly on a UTC day boundary.
func IsDayAligned(t time.Time) bool {
	return t.Equal(StartOfDay(t))
}

// ValidateRedemptionWindow checks a credential window against now. Both ends must
// be UTC day boundaries, start may not precede today and end may not pass
// today + MaxRedemptionDuration.
func ValidateRedemptionWindow(start, end, now time.Time) error {
	today := StartOfDay(now)
	switch {
	case start.After(end),
		start.Before(today),
		end.After(today.Add(config.MaxRedemptionDuration)),
		!IsDayAligned(start),
		!IsDayAligned(end):
		return dErrors.New(dErrors.CodeInvalidInput, "invalid redemption window")
	}
	return nil
}

// RedemptionDays lists every day from start to end inclusive. The window must
// already be valid.
func RedemptionDays(start, end time.Time) []time.Time {
	start, end = start.UTC(), end.UTC()
	days := make([]time.Time, 0, int(end.Sub(start)/config.Day)+1)
	for day := start; !day.After(end); day = day.Add(config.Day) {
		days = append(days, day)
	}
	return days
}
