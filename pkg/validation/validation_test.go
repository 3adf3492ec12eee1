package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "backupauth/pkg/domain-errors"
)

type window struct {
	Start int64 `json:"start" validate:"gte=0"`
	End   int64 `json:"end" validate:"gtefield=Start"`
}

type request struct {
	Payload string `json:"payload" validate:"required,base64,max=16"`
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, Validate(request{Payload: "AAEC"}))
	})

	t.Run("missing required field", func(t *testing.T) {
		err := Validate(request{})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Equal(t, "payload is required", err.Error())
	})

	t.Run("not base64", func(t *testing.T) {
		err := Validate(request{Payload: "%%%"})
		require.Error(t, err)
		assert.Equal(t, "payload must be base64", err.Error())
	})

	t.Run("field ordering", func(t *testing.T) {
		err := Validate(window{Start: 10, End: 5})
		require.Error(t, err)
		assert.Equal(t, "end must not precede start", err.Error())
	})
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "backup_auth_credential_request", snakeCase("BackupAuthCredentialRequest"))
	assert.Equal(t, "receipt_credential_presentation", snakeCase("receiptCredentialPresentation"))
	assert.Equal(t, "http_addr", snakeCase("HTTPAddr"))
	assert.Equal(t, "", snakeCase(""))
}
