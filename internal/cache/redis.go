package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the cache with a shared Redis instance. Suitable for
// multi-worker deployments: every worker sees the same entries and Redis
// handles expiry itself.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already-verified Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("[cache] redis GET %s: %v — treating as miss", key, err)
		return nil, false
	}
	return val, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("[cache] redis SET %s: %v — entry dropped", key, err)
	}
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.FlushDB(ctx).Err()
}

func (s *RedisStore) Stats(ctx context.Context) (int64, string) {
	n, err := s.client.DBSize(ctx).Result()
	if err != nil {
		log.Printf("[cache] redis DBSIZE: %v", err)
		return 0, "redis"
	}
	return n, "redis"
}
