// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"encoding/hex"

	"github.com/google/uuid"

	dErrors "backupauth/pkg/domain-errors"
)

// AccountID identifies the authenticated account that owns a backup commitment and voucher.
type AccountID uuid.UUID

// ReceiptSerialLength is the size of a purchase receipt serial in bytes.
const ReceiptSerialLength = 16

// ReceiptSerial uniquely identifies a purchase receipt. It is the double-spend key of the
// redemption ledger.
type ReceiptSerial [ReceiptSerialLength]byte

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseAccountID(s string) (AccountID, error) {
	if s == "" {
		return AccountID{}, dErrors.New(dErrors.CodeInvalidInput, "account ID cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return AccountID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid account ID format")
	}
	if id == uuid.Nil {
		return AccountID{}, dErrors.New(dErrors.CodeInvalidInput, "account ID cannot be nil")
	}
	return AccountID(id), nil
}

// ReceiptSerialFromBytes copies b into a ReceiptSerial, rejecting the wrong length.
func ReceiptSerialFromBytes(b []byte) (ReceiptSerial, error) {
	var serial ReceiptSerial
	if len(b) != ReceiptSerialLength {
		return serial, dErrors.New(dErrors.CodeInvalidInput, "invalid receipt serial length")
	}
	copy(serial[:], b)
	return serial, nil
}

// ParseReceiptSerial decodes the hex form produced by ReceiptSerial.String.
func ParseReceiptSerial(s string) (ReceiptSerial, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ReceiptSerial{}, dErrors.New(dErrors.CodeInvalidInput, "invalid receipt serial encoding")
	}
	return ReceiptSerialFromBytes(b)
}

func NewAccountID() AccountID { return AccountID(uuid.New()) }

func (id AccountID) String() string    { return uuid.UUID(id).String() }
func (id AccountID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (s ReceiptSerial) String() string { return hex.EncodeToString(s[:]) }
func (s ReceiptSerial) Bytes() []byte  { return append([]byte(nil), s[:]...) }
func (s ReceiptSerial) IsZero() bool   { return s == ReceiptSerial{} }

// MarshalText renders the canonical UUID form so AccountID serializes as a string.
func (id AccountID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *AccountID) UnmarshalText(b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return err
	}
	*id = AccountID(u)
	return nil
}
