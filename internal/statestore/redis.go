package statestore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores UI state in redis with a TTL so abandoned drafts age out.
type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisKV connects to redis and verifies the connection.
func NewRedisKV(address, password string, db int, ttl time.Duration) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisKV{client: client, ttl: ttl}, nil
}

// Get implements KV.
func (r *RedisKV) Get(ctx context.Context, key string, v interface{}) bool {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("statestore get failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		slog.Debug("statestore decode failed", "key", key, "error", err)
		return false
	}
	return true
}

// Put implements KV.
func (r *RedisKV) Put(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Debug("statestore encode failed", "key", key, "error", err)
		return
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		slog.Debug("statestore put failed", "key", key, "error", err)
	}
}

// Delete implements KV.
func (r *RedisKV) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		slog.Debug("statestore delete failed", "key", key, "error", err)
	}
}

// Keys implements KV via SCAN, best-effort.
func (r *RedisKV) Keys(ctx context.Context, prefix string) []string {
	var out []string
	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Debug("statestore scan failed", "prefix", prefix, "error", err)
	}
	return out
}

// Close releases the redis connection.
func (r *RedisKV) Close() error {
	return r.client.Close()
}
