package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"backupauth/internal/backup/config"
	"backupauth/internal/backup/models"
	id "backupauth/pkg/domain"
)

type fakeOracle map[string]bool

func (f fakeOracle) IsEnrolled(_ context.Context, _ id.AccountID, experiment string) bool {
	return f[experiment]
}

func TestConfiguredLevel(t *testing.T) {
	ctx := context.Background()
	accountID := id.NewAccountID()

	tests := []struct {
		name      string
		oracle    fakeOracle
		wantLevel models.BackupLevel
		wantOK    bool
	}{
		{name: "not enrolled", oracle: fakeOracle{}, wantLevel: models.LevelNone},
		{name: "messages", oracle: fakeOracle{config.ExperimentBackup: true}, wantLevel: models.LevelMessages, wantOK: true},
		{name: "media", oracle: fakeOracle{config.ExperimentBackupMedia: true}, wantLevel: models.LevelMedia, wantOK: true},
		{name: "media wins", oracle: fakeOracle{config.ExperimentBackup: true, config.ExperimentBackupMedia: true}, wantLevel: models.LevelMedia, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, ok := New(tt.oracle).ConfiguredLevel(ctx, accountID)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLevel, level)
		})
	}
}

func TestLevelForDay(t *testing.T) {
	d := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	account := models.NewAccount(id.NewAccountID()).WithVoucher(&models.BackupVoucher{
		ReceiptLevel: models.LevelMedia.ReceiptLevel(),
		Expiration:   d.Add(3 * day),
	})

	for i := 0; i <= 5; i++ {
		got := LevelForDay(account, d.Add(time.Duration(i)*day), models.LevelMessages)
		if i <= 3 {
			assert.Equal(t, models.LevelMedia, got, "day %d", i)
		} else {
			assert.Equal(t, models.LevelMessages, got, "day %d", i)
		}
	}

	assert.Equal(t, models.LevelMessages, LevelForDay(models.NewAccount(account.ID), d, models.LevelMessages))
}
