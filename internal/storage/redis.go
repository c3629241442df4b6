package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisPrefix namespaces slot keys in a shared Redis.
const DefaultRedisPrefix = "mapty:"

// RedisSlot stores slot values as plain Redis strings.
type RedisSlot struct {
	client redis.Cmdable
	closer func() error
	prefix string
}

var _ Slot = (*RedisSlot)(nil)

// OpenRedis connects to the Redis server at addr and checks it responds.
func OpenRedis(ctx context.Context, addr, password string, db int) (*RedisSlot, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", addr, err)
	}
	return &RedisSlot{client: client, closer: client.Close, prefix: DefaultRedisPrefix}, nil
}

// NewRedisSlot wraps an existing client. The caller keeps ownership of it.
func NewRedisSlot(client redis.Cmdable, prefix string) *RedisSlot {
	return &RedisSlot{client: client, prefix: prefix}
}

func (r *RedisSlot) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("reading slot %s: %w", key, err)
	}
	return value, nil
}

func (r *RedisSlot) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	return nil
}

func (r *RedisSlot) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("deleting slot %s: %w", key, err)
	}
	return nil
}

func (r *RedisSlot) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}
