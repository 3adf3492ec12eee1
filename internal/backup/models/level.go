package models

import "strconv"

// BackupLevel is the entitlement a credential carries. Values are the receipt
// levels used on the wire, so ordering by value matches NONE < MESSAGES < MEDIA.
type BackupLevel int64

const (
	LevelNone     BackupLevel = 0
	LevelMessages BackupLevel = 200
	LevelMedia    BackupLevel = 201
)

// FromReceiptLevel maps a receipt level onto a backup level. ok is false for
// levels this server does not recognize.
func FromReceiptLevel(receiptLevel int64) (level BackupLevel, ok bool) {
	switch BackupLevel(receiptLevel) {
	case LevelMessages:
		return LevelMessages, true
	case LevelMedia:
		return LevelMedia, true
	}
	return LevelNone, false
}

// IsPurchasable reports whether a receipt may grant this level. Only MEDIA is sold.
func (l BackupLevel) IsPurchasable() bool {
	return l == LevelMedia
}

// ReceiptLevel returns the wire value of the level.
func (l BackupLevel) ReceiptLevel() int64 {
	return int64(l)
}

func (l BackupLevel) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelMessages:
		return "messages"
	case LevelMedia:
		return "media"
	}
	return "unknown(" + strconv.FormatInt(int64(l), 10) + ")"
}
