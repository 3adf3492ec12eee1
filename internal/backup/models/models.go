package models

import (
	"time"

	id "backupauth/pkg/domain"
)

// Credential is an issued credential and the day it may be redeemed. Credentials
// are produced on every request and never stored.
type Credential struct {
	Credential     []byte
	RedemptionTime time.Time
}

// Receipt is what a verified receipt presentation proves.
type Receipt struct {
	Serial       id.ReceiptSerial
	Expiration   time.Time
	ReceiptLevel int64
}

// ReceiptRedemption is the ledger entry written once per receipt serial.
type ReceiptRedemption struct {
	Serial       id.ReceiptSerial
	Expiration   time.Time
	ReceiptLevel int64
	AccountID    id.AccountID
}

func NewReceiptRedemption(receipt Receipt, accountID id.AccountID) ReceiptRedemption {
	return ReceiptRedemption{
		Serial:       receipt.Serial,
		Expiration:   receipt.Expiration,
		ReceiptLevel: receipt.ReceiptLevel,
		AccountID:    accountID,
	}
}
