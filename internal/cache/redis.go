package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisConfig configures the Redis-backed store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix namespaces gateway entries, e.g. "mdg:".
	KeyPrefix string
}

// Redis is a Store backed by a shared Redis instance. Redis SET with
// expiry gives the atomic put-by-key and TTL semantics the pipeline
// needs; a failed read is treated as a miss so the pipeline falls
// through to the provider chain instead of erroring.
type Redis struct {
	client *goredis.Client
	prefix string
	log    *zap.Logger
}

// NewRedis connects to Redis and returns a Store. The initial ping is
// retried with bounded exponential backoff so a briefly unavailable
// Redis at boot does not kill the service. Per-request operations are
// never retried.
func NewRedis(cfg RedisConfig, log *zap.Logger) (*Redis, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 15 * time.Second
	ping := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return client.Ping(ctx).Err()
	}
	if err := backoff.Retry(ping, bo); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	log.Info("redis cache connected", zap.String("addr", cfg.Addr))
	return &Redis{client: client, prefix: cfg.KeyPrefix, log: log}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			r.log.Warn("redis get failed, treating as miss",
				zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		r.log.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *Redis) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		r.log.Warn("redis del failed", zap.String("key", key), zap.Error(err))
	}
}

// Ping reports backend reachability for the health endpoint.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
