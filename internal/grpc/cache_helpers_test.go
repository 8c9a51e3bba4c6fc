package grpc

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/godilite/kpi-server/internal/grpc/mocks"
)

func TestAddTTLJitter(t *testing.T) {
	assert.Equal(t, time.Duration(0), addTTLJitter(0))
	assert.Equal(t, -time.Second, addTTLJitter(-time.Second))
	assert.Positive(t, addTTLJitter(time.Second))

	for range 100 {
		got := addTTLJitter(10 * time.Minute)
		assert.GreaterOrEqual(t, got, 10*time.Minute-maxTTLJitter)
		assert.Less(t, got, 10*time.Minute+maxTTLJitter)
	}
}

func TestFindAndCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss fetches and stores", func(t *testing.T) {
		var sf singleflight.Group
		cache := &mocks.MockCacher{}

		got, err := FindAndCache(ctx, cache, &sf, "k1", time.Minute, zap.NewNop(), func(context.Context) ([]string, error) {
			return []string{"a", "b"}, nil
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, got)
		assert.Eventually(t, func() bool {
			return len(cache.Keys()) == 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("hit returns cached value", func(t *testing.T) {
		var sf singleflight.Group
		cache := &mocks.MockCacher{}
		require.NoError(t, cache.Set(ctx, "k2", 7.5, time.Minute))

		got, err := FindAndCache(ctx, cache, &sf, "k2", time.Minute, zap.NewNop(), func(context.Context) (float64, error) {
			return 1, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 7.5, got)
	})

	t.Run("cache error falls back to fetch", func(t *testing.T) {
		var sf singleflight.Group
		cache := &mocks.MockCacher{
			GetFunc: func(ctx context.Context, key string, dest any) error {
				return errors.New("connection refused")
			},
			SetFunc: func(ctx context.Context, key string, value any, expiration time.Duration) error {
				return errors.New("connection refused")
			},
		}

		got, err := FindAndCache(ctx, cache, &sf, "k3", time.Minute, zap.NewNop(), func(context.Context) (int, error) {
			return 3, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, got)
	})

	t.Run("fetch error is returned", func(t *testing.T) {
		var sf singleflight.Group
		cache := &mocks.MockCacher{}
		fetchErr := errors.New("boom")

		_, err := FindAndCache(ctx, cache, &sf, "k4", time.Minute, nil, func(context.Context) (int, error) {
			return 0, fetchErr
		})

		assert.ErrorIs(t, err, fetchErr)
		assert.Empty(t, cache.Keys())
	})

	t.Run("nil cache always fetches", func(t *testing.T) {
		var sf singleflight.Group

		got, err := FindAndCache(ctx, nil, &sf, "k5", time.Minute, nil, func(context.Context) (string, error) {
			return "fresh", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "fresh", got)
	})

	t.Run("concurrent misses share one fetch", func(t *testing.T) {
		var sf singleflight.Group
		cache := &mocks.MockCacher{}
		var fetches atomic.Int32
		release := make(chan struct{})

		var wg sync.WaitGroup
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := FindAndCache(ctx, cache, &sf, "k6", time.Minute, zap.NewNop(), func(context.Context) (int, error) {
					fetches.Add(1)
					<-release
					return 42, nil
				})
				assert.NoError(t, err)
				assert.Equal(t, 42, got)
			}()
		}

		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Less(t, fetches.Load(), int32(5))
	})
}
