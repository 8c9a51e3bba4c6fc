package grpc

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultSetTimeout   = 5 * time.Second
	maxTTLJitter        = 15 * time.Second
)

// addTTLJitter spreads expirations by up to ±15s.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	jitter := time.Duration(rand.Int64N(int64(2*maxTTLJitter))) - maxTTLJitter
	if ttl+jitter <= 0 {
		return ttl
	}
	return ttl + jitter
}

// noopCache always misses. It stands in when no cache is configured.
type noopCache struct{}

func (noopCache) Close() error { return nil }

func (noopCache) Get(context.Context, string, any) error { return redis.Nil }

func (noopCache) Set(context.Context, string, any, time.Duration) error { return nil }

func storeValue[T any](c Cacher, key string, ttl time.Duration, logger *zap.Logger, value T, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
	defer cancel()

	ttl = addTTLJitter(ttl)
	if err := c.Set(ctx, key, value, ttl); err != nil {
		logger.Warn("failed to store cache entry",
			zap.String("key", key),
			zap.String("reason", reason),
			zap.Error(err))
		return
	}
	logger.Debug("cache entry stored",
		zap.String("key", key),
		zap.String("reason", reason),
		zap.Duration("ttl", ttl))
}

func triggerBackgroundRefresh[T any](
	c Cacher,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) {
	go func() {
		time.Sleep(time.Duration(rand.IntN(1000)) * time.Millisecond)

		_, _, _ = sf.Do(key+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
			defer cancel()

			value, err := fn(ctx)
			if err != nil {
				logger.Warn("background refresh failed",
					zap.String("key", key),
					zap.Error(err))
				return nil, err
			}
			storeValue(c, key, ttl, logger, value, "refresh")
			return value, nil
		})
	}()
}

// FindAndCache reads key from the cache and falls back to fn on a miss.
// Concurrent misses for the same key share one fetch, and every hit schedules
// a background refresh. Cache errors are treated as misses.
func FindAndCache[T any](
	ctx context.Context,
	c Cacher,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = noopCache{}
	}

	var cached T
	err := c.Get(ctx, key, &cached)
	switch {
	case err == nil:
		logger.Debug("cache hit", zap.String("key", key))
		triggerBackgroundRefresh(c, sf, key, ttl, logger, fn)
		return cached, nil

	case errors.Is(err, redis.Nil):
		logger.Debug("cache miss", zap.String("key", key))

	default:
		logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}

	v, err, shared := sf.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return zero, err
		}
		go storeValue(c, key, ttl, logger, value, "miss")
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		logger.Error("singleflight type mismatch", zap.String("key", key))
		return zero, fmt.Errorf("type mismatch for key %q", key)
	}

	if shared {
		logger.Debug("singleflight shared result", zap.String("key", key))
	}

	return value, nil
}
