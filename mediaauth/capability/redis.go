package capability

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKeyPrefix = "media-capability:"

// RedisStore is a single-use store shared across service instances.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore returns a new RedisStore.
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = defaultRedisKeyPrefix
	}

	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Redeem implements the Store interface.
func (s *RedisStore) Redeem(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Second
	}

	set, err := s.client.SetNX(ctx, s.keyPrefix+token, 1, ttl).Result()
	if err != nil {
		return false, err
	}

	return !set, nil
}
