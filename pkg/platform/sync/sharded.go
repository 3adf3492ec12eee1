package sync

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// ShardCount is the number of independent locks.
const ShardCount = 32

// ShardedMutex spreads per-key locking over a fixed set of mutexes so unrelated
// accounts rarely contend. Two keys may share a shard; callers must not hold two
// shard locks at once.
type ShardedMutex struct {
	shards [ShardCount]sync.Mutex
}

func NewShardedMutex() *ShardedMutex {
	return &ShardedMutex{}
}

// Lock acquires the lock for the given key's shard.
func (m *ShardedMutex) Lock(key string) {
	m.shards[ShardFor(key)].Lock()
}

// Unlock releases the lock for the given key's shard.
func (m *ShardedMutex) Unlock(key string) {
	m.shards[ShardFor(key)].Unlock()
}

// LockShard acquires shard i directly, for callers sweeping every shard in turn.
func (m *ShardedMutex) LockShard(i int) {
	m.shards[i].Lock()
}

func (m *ShardedMutex) UnlockShard(i int) {
	m.shards[i].Unlock()
}

// ShardFor maps key onto [0, 32). Empty keys use shard 0.
func ShardFor(key string) int {
	if key == "" {
		return 0
	}
	return int(xxhash.Sum64String(key) % ShardCount)
}
