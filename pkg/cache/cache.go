// Package cache wraps a Redis client with JSON helpers. Redis is optional:
// when the connection fails at boot the helpers degrade to no-ops so the
// API keeps serving from Mongo alone.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/enventory/config"
	"github.com/shashiranjanraj/enventory/pkg/logger"
)

// RDB is the shared Redis client. Nil when Redis is unavailable.
var RDB *redis.Client

// Connect initialises the shared client and pings the server.
func Connect(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Get("REDIS_ADDR", "localhost:6379"),
		Password: config.Get("REDIS_PASSWORD", ""),
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return err
	}

	RDB = client
	logger.Info("redis connected", "addr", config.Get("REDIS_ADDR", "localhost:6379"))
	return nil
}

// Close releases the client connection.
func Close() error {
	if RDB == nil {
		return nil
	}
	return RDB.Close()
}

// Set marshals value as JSON and stores it under key with a TTL.
// No-op when Redis is unavailable.
func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if RDB == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return RDB.Set(ctx, key, raw, ttl).Err()
}

// Get unmarshals the JSON stored under key into dest. Returns (false, nil)
// on a miss or when Redis is unavailable.
func Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if RDB == nil {
		return false, nil
	}
	raw, err := RDB.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Del removes keys. No-op when Redis is unavailable.
func Del(ctx context.Context, keys ...string) error {
	if RDB == nil || len(keys) == 0 {
		return nil
	}
	return RDB.Del(ctx, keys...).Err()
}
