package receiver

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper claims a redelivery key once within its TTL.
type Deduper interface {
	// Claim returns false when the key was already claimed.
	Claim(ctx context.Context, key string) (bool, error)
	// Release gives a claim back so the next delivery is processed again.
	Release(ctx context.Context, key string) error
}

type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

func (d *RedisDeduper) Claim(ctx context.Context, key string) (bool, error) {
	return d.client.SetNX(ctx, redisKey(key), time.Now().Unix(), d.ttl).Result()
}

func (d *RedisDeduper) Release(ctx context.Context, key string) error {
	return d.client.Del(ctx, redisKey(key)).Err()
}

func redisKey(key string) string {
	return "checkout:notification:" + key
}

// NopDeduper claims every key; the repository's unique index still catches
// redeliveries.
type NopDeduper struct{}

func (NopDeduper) Claim(context.Context, string) (bool, error) { return true, nil }
func (NopDeduper) Release(context.Context, string) error       { return nil }
