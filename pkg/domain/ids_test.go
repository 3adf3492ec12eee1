package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "backupauth/pkg/domain-errors"
)

func TestParseAccountID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseAccountID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseAccountID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseAccountID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		raw := uuid.New()
		id, err := ParseAccountID(raw.String())
		require.NoError(t, err)
		assert.Equal(t, raw.String(), id.String())
		assert.False(t, id.IsNil())
	})
}

func TestReceiptSerial(t *testing.T) {
	t.Run("round trips through hex", func(t *testing.T) {
		serial, err := ReceiptSerialFromBytes([]byte("0123456789abcdef"))
		require.NoError(t, err)

		parsed, err := ParseReceiptSerial(serial.String())
		require.NoError(t, err)
		assert.Equal(t, serial, parsed)
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := ReceiptSerialFromBytes([]byte("short"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects non-hex", func(t *testing.T) {
		_, err := ParseReceiptSerial(strings.Repeat("zz", ReceiptSerialLength))
		require.Error(t, err)
	})

	t.Run("bytes are a copy", func(t *testing.T) {
		serial, err := ReceiptSerialFromBytes([]byte("0123456789abcdef"))
		require.NoError(t, err)
		b := serial.Bytes()
		b[0] = 'x'
		assert.Equal(t, byte('0'), serial[0])
	})
}

func TestAccountID_JSON(t *testing.T) {
	accountID := NewAccountID()
	b, err := json.Marshal(struct {
		ID AccountID `json:"id"`
	}{accountID})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+accountID.String()+`"}`, string(b))

	var decoded struct {
		ID AccountID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, accountID, decoded.ID)
}
