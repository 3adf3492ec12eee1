package receipt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"backupauth/internal/backup/config"
	"backupauth/internal/backup/models"
	id "backupauth/pkg/domain"
	"backupauth/pkg/platform/sentinel"
	"backupauth/pkg/requestcontext"
)

// PostgresLedger records redemptions in receipt_redemptions, keyed by serial.
type PostgresLedger struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed receipt ledger.
func NewPostgres(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) InsertIfAbsent(ctx context.Context, redemption models.ReceiptRedemption) (bool, error) {
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO receipt_redemptions (receipt_serial, expiration, receipt_level, account_id, redeemed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (receipt_serial) DO NOTHING
	`, redemption.Serial.Bytes(), redemption.Expiration.UTC(), redemption.ReceiptLevel,
		uuid.UUID(redemption.AccountID), requestcontext.Now(ctx))
	if err != nil {
		return false, fmt.Errorf("insert receipt redemption: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert receipt redemption rows: %w", err)
	}
	return rows == 1, nil
}

func (l *PostgresLedger) Get(ctx context.Context, serial id.ReceiptSerial) (models.ReceiptRedemption, error) {
	var (
		r         models.ReceiptRedemption
		accountID uuid.UUID
	)
	err := l.db.QueryRowContext(ctx, `
		SELECT expiration, receipt_level, account_id
		FROM receipt_redemptions
		WHERE receipt_serial = $1
	`, serial.Bytes()).Scan(&r.Expiration, &r.ReceiptLevel, &accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ReceiptRedemption{}, fmt.Errorf("receipt redemption: %w", sentinel.ErrNotFound)
		}
		return models.ReceiptRedemption{}, fmt.Errorf("find receipt redemption: %w", err)
	}
	r.Serial = serial
	r.AccountID = id.AccountID(accountID)
	r.Expiration = r.Expiration.UTC()
	return r, nil
}

func (l *PostgresLedger) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := requestcontext.Now(ctx).Add(-config.ReceiptRetention)
	res, err := l.db.ExecContext(ctx, `DELETE FROM receipt_redemptions WHERE expiration <= $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge receipt redemptions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge receipt redemptions rows: %w", err)
	}
	return n, nil
}
