package cart

import (
	"context"
	"fmt"
	"time"

	redisclient "github.com/averyhale/meadowcart-backend/pkg/redis"
)

// snapshotCache is the slice of the Redis client the repository needs.
type snapshotCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartSnapshotKey(sessionID string) string
}

// RedisRepository stores cart snapshots in Redis with a sliding TTL, so an
// abandoned session's cart eventually expires on its own.
type RedisRepository struct {
	cache snapshotCache
	ttl   time.Duration
}

// NewRedisRepository builds a snapshot repository backed by the shared client.
func NewRedisRepository(cache snapshotCache, ttl time.Duration) (*RedisRepository, error) {
	if cache == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("snapshot ttl must be positive")
	}
	return &RedisRepository{cache: cache, ttl: ttl}, nil
}

func (r *RedisRepository) Load(ctx context.Context, sessionID string) (*Snapshot, error) {
	raw, err := r.cache.Get(ctx, r.cache.CartSnapshotKey(sessionID))
	if err != nil {
		if redisclient.IsMissing(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("loading cart snapshot: %w", err)
	}
	snapshot, err := DecodeSnapshot([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding cart snapshot: %w", err)
	}
	return &snapshot, nil
}

func (r *RedisRepository) Save(ctx context.Context, sessionID string, snapshot Snapshot) error {
	data, err := EncodeSnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("encoding cart snapshot: %w", err)
	}
	if err := r.cache.Set(ctx, r.cache.CartSnapshotKey(sessionID), string(data), r.ttl); err != nil {
		return fmt.Errorf("saving cart snapshot: %w", err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, sessionID string) error {
	return r.cache.Del(ctx, r.cache.CartSnapshotKey(sessionID))
}
