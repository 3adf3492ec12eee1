package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"backupauth/internal/backup/config"
	"backupauth/internal/backup/models"
	id "backupauth/pkg/domain"
	"backupauth/pkg/platform/sentinel"
	"backupauth/pkg/requestcontext"
)

const redisKeyPrefix = "receipt:"

// redemptionJSON is the value stored under a serial's key.
type redemptionJSON struct {
	AccountID    string `json:"account_id"`
	ReceiptLevel int64  `json:"receipt_level"`
	Expiration   int64  `json:"expiration"` // Unix seconds
}

// RedisLedger records redemptions with SETNX. Keys expire ReceiptRetention after
// the receipt does, so no sweep is needed.
type RedisLedger struct {
	client redis.UniversalClient
}

// NewRedis constructs a Redis-backed receipt ledger.
func NewRedis(client redis.UniversalClient) *RedisLedger {
	return &RedisLedger{client: client}
}

func (l *RedisLedger) InsertIfAbsent(ctx context.Context, redemption models.ReceiptRedemption) (bool, error) {
	payload, err := json.Marshal(redemptionJSON{
		AccountID:    redemption.AccountID.String(),
		ReceiptLevel: redemption.ReceiptLevel,
		Expiration:   redemption.Expiration.Unix(),
	})
	if err != nil {
		return false, fmt.Errorf("marshal receipt redemption: %w", err)
	}

	ttl := redemption.Expiration.Add(config.ReceiptRetention).Sub(requestcontext.Now(ctx))
	if ttl < time.Second {
		ttl = time.Second
	}

	inserted, err := l.client.SetNX(ctx, redisKey(redemption.Serial), payload, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("insert receipt redemption: %w", err)
	}
	return inserted, nil
}

func (l *RedisLedger) Get(ctx context.Context, serial id.ReceiptSerial) (models.ReceiptRedemption, error) {
	raw, err := l.client.Get(ctx, redisKey(serial)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.ReceiptRedemption{}, fmt.Errorf("receipt redemption: %w", sentinel.ErrNotFound)
		}
		return models.ReceiptRedemption{}, fmt.Errorf("find receipt redemption: %w", err)
	}

	var j redemptionJSON
	if err := json.Unmarshal(raw, &j); err != nil {
		return models.ReceiptRedemption{}, fmt.Errorf("unmarshal receipt redemption: %w", err)
	}
	accountID, err := id.ParseAccountID(j.AccountID)
	if err != nil {
		return models.ReceiptRedemption{}, fmt.Errorf("parse receipt redemption account: %w", err)
	}
	return models.ReceiptRedemption{
		Serial:       serial,
		Expiration:   time.Unix(j.Expiration, 0).UTC(),
		ReceiptLevel: j.ReceiptLevel,
		AccountID:    accountID,
	}, nil
}

func redisKey(serial id.ReceiptSerial) string {
	return redisKeyPrefix + serial.String()
}
