package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDriver moves envelopes through a Redis list so multiple processes
// can share one queue.
type RedisDriver struct {
	rdb *redis.Client
	key string
}

// NewRedisDriver creates a driver backed by the given client and list key.
func NewRedisDriver(rdb *redis.Client, key string) (*RedisDriver, error) {
	if rdb == nil {
		return nil, errors.New("queue: nil redis client")
	}
	if key == "" {
		key = "enventory:queue"
	}
	return &RedisDriver{rdb: rdb, key: key}, nil
}

func (d *RedisDriver) Push(ctx context.Context, raw []byte) error {
	return d.rdb.RPush(ctx, d.key, raw).Err()
}

// Pop blocks up to 5s per call so workers notice context cancellation.
func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	res, err := d.rdb.BLPop(ctx, 5*time.Second, d.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(res) < 2 {
		return nil, nil
	}
	return []byte(res[1]), nil
}

func (d *RedisDriver) Close() error { return nil }
