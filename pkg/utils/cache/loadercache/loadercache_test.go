package loadercache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psuracing/racingline-service-go/log"
	"github.com/psuracing/racingline-service-go/pkg/utils/cache"
)

func countingLoader(calls *atomic.Int32) func(context.Context, string) (*int, error) {
	return func(_ context.Context, key string) (*int, error) {
		n := int(calls.Add(1))
		time.Sleep(5 * time.Millisecond)
		return &n, nil
	}
}

func TestGet_loadsOnceForConcurrentCallers(t *testing.T) {
	var calls atomic.Int32
	c := New[string, int](
		WithLoader[string, int](countingLoader(&calls)),
		WithExpiration[string, int](0),
		WithLogger[string, int](log.Nop()))

	var wg sync.WaitGroup
	results := make([]*int, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(context.Background(), "track")
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestInvalidate(t *testing.T) {
	var calls atomic.Int32
	c := New[string, int](
		WithLoader[string, int](countingLoader(&calls)),
		WithExpiration[string, int](0),
		WithLogger[string, int](log.Nop()))
	ctx := context.Background()

	first, err := c.Get(ctx, "track")
	require.NoError(t, err)
	c.Invalidate(ctx, "track")
	second, err := c.Get(ctx, "track")
	require.NoError(t, err)
	assert.Equal(t, 1, *first)
	assert.Equal(t, 2, *second)

	c.InvalidateAll(ctx)
	third, err := c.Get(ctx, "track")
	require.NoError(t, err)
	assert.Equal(t, 3, *third)
}

func TestExpiration(t *testing.T) {
	var calls atomic.Int32
	c := New[string, int](
		WithLoader[string, int](countingLoader(&calls)),
		WithExpiration[string, int](time.Millisecond),
		WithLogger[string, int](log.Nop()))
	ctx := context.Background()

	_, err := c.Get(ctx, "track")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = c.Get(ctx, "track")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGet_errors(t *testing.T) {
	ctx := context.Background()

	noLoader := New[string, int](WithLogger[string, int](log.Nop()))
	_, err := noLoader.Get(ctx, "x")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	errBoom := errors.New("boom")
	failing := New[string, int](
		WithLoader[string, int](func(context.Context, string) (*int, error) {
			return nil, errBoom
		}),
		WithLogger[string, int](log.Nop()))
	_, err = failing.Get(ctx, "x")
	assert.ErrorIs(t, err, errBoom)
}
