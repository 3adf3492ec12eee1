package bucket

import (
	"context"
	"sync"
	"time"

	"backupauth/internal/ratelimit/models"
	"backupauth/pkg/requestcontext"
)

// InMemoryBucketStore implements BucketStore using in-memory sliding window.
// Counters are per process; use the Redis or Postgres store when running replicas.
type InMemoryBucketStore struct {
	mu      sync.Mutex
	buckets map[string]*slidingWindow
}

// slidingWindow is the aggregate root for rate limit state.
type slidingWindow struct {
	timestamps []time.Time
	window     time.Duration
}

// tryConsume attempts to consume tokens from the sliding window.
// Returns whether the request was allowed, the count after the attempt, and reset time.
func (sw *slidingWindow) tryConsume(cost, limit int, now time.Time) (allowed bool, used int, resetAt time.Time) {
	sw.cleanupExpired(now)

	if len(sw.timestamps)+cost > limit {
		if len(sw.timestamps) == 0 {
			return false, 0, now.Add(sw.window)
		}
		return false, len(sw.timestamps), sw.timestamps[0].Add(sw.window)
	}

	for range cost {
		sw.timestamps = append(sw.timestamps, now)
	}

	return true, len(sw.timestamps), sw.timestamps[0].Add(sw.window)
}

func (sw *slidingWindow) count(now time.Time) int {
	sw.cleanupExpired(now)
	return len(sw.timestamps)
}

func (sw *slidingWindow) cleanupExpired(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

// NewInMemoryBucketStore creates a new in-memory bucket store.
func NewInMemoryBucketStore() *InMemoryBucketStore {
	return &InMemoryBucketStore{
		buckets: make(map[string]*slidingWindow),
	}
}

// Allow checks if a request is allowed and increments the counter.
func (s *InMemoryBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	return s.AllowN(ctx, key, 1, limit, window)
}

// AllowN checks if a request with custom cost is allowed.
func (s *InMemoryBucketStore) AllowN(ctx context.Context, key string, cost, limit int, window time.Duration) (*models.RateLimitResult, error) {
	if err := validateArgs(key, cost, limit, window); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.buckets[key]
	if !ok {
		bucket = &slidingWindow{window: window}
		s.buckets[key] = bucket
	}
	bucket.window = window
	allowed, used, resetAt := bucket.tryConsume(cost, limit, now)
	if !allowed {
		return models.NewDeniedResult(limit, resetAt, now), nil
	}
	return models.NewAllowedResult(limit, used, resetAt), nil
}

// Reset clears the rate limit counter for a key.
func (s *InMemoryBucketStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// GetCurrentCount returns the current request count for a key.
func (s *InMemoryBucketStore) GetCurrentCount(ctx context.Context, key string) (int, error) {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.buckets[key]
	if !ok {
		return 0, nil
	}
	return bucket.count(now), nil
}

// PurgeExpired drops buckets whose every charge has aged out of the window.
func (s *InMemoryBucketStore) PurgeExpired(ctx context.Context) (int64, error) {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for key, bucket := range s.buckets {
		if bucket.count(now) == 0 {
			delete(s.buckets, key)
			purged++
		}
	}
	return purged, nil
}
