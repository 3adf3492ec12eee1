// Package policy resolves the backup level an account is entitled to.
package policy

import (
	"context"
	"time"

	"backupauth/internal/backup/config"
	"backupauth/internal/backup/models"
	id "backupauth/pkg/domain"
)

// EnrollmentOracle reports experiment membership.
type EnrollmentOracle interface {
	IsEnrolled(ctx context.Context, accountID id.AccountID, experiment string) bool
}

type Policy struct {
	enrollment EnrollmentOracle
}

func New(enrollment EnrollmentOracle) *Policy {
	return &Policy{enrollment: enrollment}
}

// ConfiguredLevel is the level granted by enrollment alone, ignoring vouchers.
// MEDIA enrollment wins over MESSAGES. ok is false when the account may not back up.
func (p *Policy) ConfiguredLevel(ctx context.Context, accountID id.AccountID) (level models.BackupLevel, ok bool) {
	if p.enrollment.IsEnrolled(ctx, accountID, config.ExperimentBackupMedia) {
		return models.LevelMedia, true
	}
	if p.enrollment.IsEnrolled(ctx, accountID, config.ExperimentBackup) {
		return models.LevelMessages, true
	}
	return models.LevelNone, false
}

// LevelForDay is the level a credential redeemable on day carries: the voucher
// level when a voucher covers day, otherwise the configured ceiling. A covering
// voucher may exceed the ceiling.
func LevelForDay(account models.Account, day time.Time, ceiling models.BackupLevel) models.BackupLevel {
	if level, ok := account.StoredLevel(day); ok {
		return level
	}
	return ceiling
}
