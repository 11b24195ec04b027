// Package cache implements the Hybrid Cache: a local (in-process) tier
// backed by a shared Redis tier, with compression, single-flight
// recomputation, and pattern-based invalidation strategies.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KVDriver is the shared-tier key/value contract. RedisDriver is the only
// implementation; it is injected rather than reached for as a package
// singleton so tests can substitute a fake.
type KVDriver interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
	Publish(ctx context.Context, channel string, message []byte) error
	Subscribe(ctx context.Context, pattern string) <-chan string
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Ping(ctx context.Context) error
}

type RedisDriver struct {
	client *redis.Client
}

func NewRedisDriver(client *redis.Client) *RedisDriver {
	return &RedisDriver{client: client}
}

func (d *RedisDriver) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := d.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return val, true, nil
}

func (d *RedisDriver) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := d.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (d *RedisDriver) Delete(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func (d *RedisDriver) DeletePattern(ctx context.Context, pattern string) error {
	iter := d.client.Scan(ctx, 0, pattern, 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan pattern: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := d.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete pattern: %w", err)
	}
	return nil
}

// Publish fans out an invalidation notice to every process sharing this
// Redis instance, so each process's local tier can purge the same key on
// SMART/cascade invalidation (§4.1).
func (d *RedisDriver) Publish(ctx context.Context, channel string, message []byte) error {
	return d.client.Publish(ctx, channel, message).Err()
}

func (d *RedisDriver) Subscribe(ctx context.Context, pattern string) <-chan string {
	out := make(chan string, 64)
	sub := d.client.PSubscribe(ctx, pattern)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				out <- msg.Payload
			}
		}
	}()
	return out
}

// Incr atomically increments key (creating it at 1 if absent) and
// (re)sets its TTL on every call, so a steady trickle of events keeps the
// counter alive without a separate expiry write (§4.4's demand counters).
func (d *RedisDriver) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := d.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("cache incr: %w", err)
	}
	if err := d.client.Expire(ctx, key, ttl).Err(); err != nil {
		return n, fmt.Errorf("cache incr expire: %w", err)
	}
	return n, nil
}

func (d *RedisDriver) Ping(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}

var ErrCacheMiss = fmt.Errorf("cache miss")
