package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"backupauth/internal/backup/config"
	"backupauth/internal/backup/models"
	id "backupauth/pkg/domain"
	"backupauth/pkg/platform/sentinel"
	"backupauth/pkg/requestcontext"
)

// PostgresStore persists account snapshots in the backup_accounts table. The
// version column carries the compare-and-swap token.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed account store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, accountID id.AccountID) (models.Account, error) {
	var (
		commitment   []byte
		receiptLevel sql.NullInt64
		expiration   sql.NullTime
		version      int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT backup_commitment, voucher_receipt_level, voucher_expiration, version
		FROM backup_accounts
		WHERE account_id = $1
	`, uuid.UUID(accountID)).Scan(&commitment, &receiptLevel, &expiration, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.NewAccount(accountID), nil
		}
		return models.Account{}, fmt.Errorf("find backup account: %w", err)
	}

	account := models.Account{
		ID:               accountID,
		BackupCommitment: commitment,
		Version:          version,
	}
	if receiptLevel.Valid && expiration.Valid {
		account.BackupVoucher = &models.BackupVoucher{
			ReceiptLevel: receiptLevel.Int64,
			Expiration:   expiration.Time.UTC(),
		}
	}
	return account, nil
}

func (s *PostgresStore) Update(ctx context.Context, accountID id.AccountID, mutate models.Mutation) (models.Account, error) {
	for attempt := 0; attempt < config.MaxUpdateAttempts; attempt++ {
		current, err := s.Get(ctx, accountID)
		if err != nil {
			return models.Account{}, err
		}

		next, changed := mutate(current.Clone())
		if !changed {
			return current, nil
		}
		next.ID = accountID
		next.Version = current.Version + 1

		swapped, err := s.compareAndSwap(ctx, current.Version, next)
		if err != nil {
			return models.Account{}, err
		}
		if swapped {
			return next, nil
		}
	}
	return models.Account{}, fmt.Errorf("update backup account after %d attempts: %w", config.MaxUpdateAttempts, sentinel.ErrConflict)
}

// compareAndSwap writes next if the stored version still equals expected. A
// never-written account (version 0) is created with an insert that loses to any
// concurrent creator.
func (s *PostgresStore) compareAndSwap(ctx context.Context, expected int64, next models.Account) (bool, error) {
	var (
		receiptLevel sql.NullInt64
		expiration   sql.NullTime
	)
	if v := next.BackupVoucher; v != nil {
		receiptLevel = sql.NullInt64{Int64: v.ReceiptLevel, Valid: true}
		expiration = sql.NullTime{Time: v.Expiration.UTC(), Valid: true}
	}
	now := requestcontext.Now(ctx)

	var (
		res sql.Result
		err error
	)
	if expected == 0 {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO backup_accounts (account_id, backup_commitment, voucher_receipt_level, voucher_expiration, version, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (account_id) DO NOTHING
		`, uuid.UUID(next.ID), next.BackupCommitment, receiptLevel, expiration, next.Version, now)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE backup_accounts
			SET backup_commitment = $2,
			    voucher_receipt_level = $3,
			    voucher_expiration = $4,
			    version = $5,
			    updated_at = $6
			WHERE account_id = $1 AND version = $7
		`, uuid.UUID(next.ID), next.BackupCommitment, receiptLevel, expiration, next.Version, now, expected)
	}
	if err != nil {
		if lostRace(err) {
			return false, nil
		}
		return false, fmt.Errorf("write backup account: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write backup account rows: %w", err)
	}
	return rows == 1, nil
}

// lostRace reports Postgres errors that mean another writer got there first.
// The caller re-reads and retries them like a failed version check.
func lostRace(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)
