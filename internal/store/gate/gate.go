// internal/store/gate/gate.go
package gate

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store backs deduplication markers and rate-limit counters with Redis so
// the gates hold across engine instances.
type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Get returns the current counter value for key, or exists=false when the
// key is unset or expired.
func (s *Store) Get(ctx context.Context, key string) (int64, bool, error) {
	val, err := s.rdb.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

// IncrementWithTTL atomically increments key and sets ttl only when the key
// was just created, so the window is fixed rather than sliding. INCR and
// EXPIRE NX run in one MULTI/EXEC block.
func (s *Store) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// SetIfAbsent atomically claims key for ttl. False means another caller
// already holds the claim.
func (s *Store) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key, 1, ttl).Result()
}
