// Package receipt implements the redeemed-receipt ledger. Every backend makes
// InsertIfAbsent a single atomic step so a serial is redeemed at most once.
package receipt

import (
	"context"
	"fmt"
	"time"

	"backupauth/internal/backup/config"
	"backupauth/internal/backup/models"
	id "backupauth/pkg/domain"
	"backupauth/pkg/platform/sentinel"
	platformsync "backupauth/pkg/platform/sync"
	"backupauth/pkg/requestcontext"
)

// InMemoryLedger keeps redemptions in maps partitioned by the shard of their
// serial, each guarded by the matching ShardedMutex shard.
type InMemoryLedger struct {
	locks  *platformsync.ShardedMutex
	shards [platformsync.ShardCount]map[id.ReceiptSerial]models.ReceiptRedemption
}

func NewInMemoryLedger() *InMemoryLedger {
	l := &InMemoryLedger{locks: platformsync.NewShardedMutex()}
	for i := range l.shards {
		l.shards[i] = make(map[id.ReceiptSerial]models.ReceiptRedemption)
	}
	return l
}

func (l *InMemoryLedger) InsertIfAbsent(ctx context.Context, redemption models.ReceiptRedemption) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	key := redemption.Serial.String()
	l.locks.Lock(key)
	defer l.locks.Unlock(key)

	shard := l.shards[platformsync.ShardFor(key)]
	if _, exists := shard[redemption.Serial]; exists {
		return false, nil
	}
	shard[redemption.Serial] = redemption
	return true, nil
}

// Get returns the redemption recorded for serial.
func (l *InMemoryLedger) Get(_ context.Context, serial id.ReceiptSerial) (models.ReceiptRedemption, error) {
	key := serial.String()
	l.locks.Lock(key)
	defer l.locks.Unlock(key)

	redemption, ok := l.shards[platformsync.ShardFor(key)][serial]
	if !ok {
		return models.ReceiptRedemption{}, fmt.Errorf("receipt redemption: %w", sentinel.ErrNotFound)
	}
	return redemption, nil
}

// PurgeExpired drops redemptions whose receipt expired more than ReceiptRetention
// before now.
func (l *InMemoryLedger) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := requestcontext.Now(ctx).Add(-config.ReceiptRetention)
	var purged int64
	for i := range l.shards {
		if err := ctx.Err(); err != nil {
			return purged, err
		}
		purged += l.purgeShard(i, cutoff)
	}
	return purged, nil
}

func (l *InMemoryLedger) purgeShard(shard int, cutoff time.Time) int64 {
	var purged int64
	l.locks.LockShard(shard)
	defer l.locks.UnlockShard(shard)
	for serial, r := range l.shards[shard] {
		if !r.Expiration.After(cutoff) {
			delete(l.shards[shard], serial)
			purged++
		}
	}
	return purged
}
