package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps each namespace as a hash under "animehub:kv:<namespace>".
// TTL, when set, is refreshed on every write so abandoned sessions expire.
type Redis struct {
	Rdb *redis.Client
	TTL time.Duration
}

func OpenRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Printf("[storage] redis connection opened (%s)", opts.Addr)
	return &Redis{Rdb: rdb, TTL: 7 * 24 * time.Hour}, nil
}

func (r *Redis) hashKey(namespace string) string {
	return "animehub:kv:" + namespace
}

func (r *Redis) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	v, err := r.Rdb.HGet(ctx, r.hashKey(namespace), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis hget: %w", err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, namespace, key, value string) error {
	hk := r.hashKey(namespace)
	pipe := r.Rdb.TxPipeline()
	pipe.HSet(ctx, hk, key, value)
	if r.TTL > 0 {
		pipe.Expire(ctx, hk, r.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, namespace, key string) error {
	if err := r.Rdb.HDel(ctx, r.hashKey(namespace), key).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}

func (r *Redis) Close() error { return r.Rdb.Close() }
