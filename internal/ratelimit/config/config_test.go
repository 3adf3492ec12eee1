package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backupauth/internal/ratelimit/models"
	dErrors "backupauth/pkg/domain-errors"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Limit
		wantErr bool
	}{
		{name: "hours", raw: "10/24h", want: Limit{RequestsPerWindow: 10, Window: 24 * time.Hour}},
		{name: "spaces are trimmed", raw: " 5 / 1m ", want: Limit{RequestsPerWindow: 5, Window: time.Minute}},
		{name: "zero disables", raw: "0/1h", want: Limit{RequestsPerWindow: 0, Window: time.Hour}},
		{name: "missing slash", raw: "10", wantErr: true},
		{name: "negative count", raw: "-1/1h", wantErr: true},
		{name: "bad duration", raw: "10/forever", wantErr: true},
		{name: "zero window", raw: "10/0s", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLimit(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	for _, d := range []models.Descriptor{models.DescriptorSetBackupID, models.DescriptorRedeemReceipt} {
		limit := cfg.GetAccountLimit(d)
		assert.False(t, limit.Disabled(), d)
		assert.Positive(t, limit.Window, d)
	}
	assert.True(t, cfg.GetAccountLimit("unknown").Disabled())
}

func TestApplyOverrides(t *testing.T) {
	t.Run("replaces configured descriptors and skips blanks", func(t *testing.T) {
		cfg := DefaultConfig()
		before := cfg.GetAccountLimit(models.DescriptorRedeemReceipt)

		err := cfg.ApplyOverrides(map[models.Descriptor]string{
			models.DescriptorSetBackupID:   "3/1h",
			models.DescriptorRedeemReceipt: "",
		})
		require.NoError(t, err)

		assert.Equal(t, Limit{RequestsPerWindow: 3, Window: time.Hour}, cfg.GetAccountLimit(models.DescriptorSetBackupID))
		assert.Equal(t, before, cfg.GetAccountLimit(models.DescriptorRedeemReceipt))
	})

	t.Run("zero count disables the descriptor", func(t *testing.T) {
		cfg := DefaultConfig()
		require.NoError(t, cfg.ApplyOverrides(map[models.Descriptor]string{models.DescriptorRedeemReceipt: "0/1h"}))
		assert.True(t, cfg.GetAccountLimit(models.DescriptorRedeemReceipt).Disabled())
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.ApplyOverrides(map[models.Descriptor]string{models.DescriptorSetBackupID: "lots"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects unknown descriptors", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.ApplyOverrides(map[models.Descriptor]string{"login": "1/1m"})
		require.Error(t, err)
	})
}
