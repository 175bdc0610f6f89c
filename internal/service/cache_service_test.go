package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	memoryCache
	setErr    error
	deleteErr error
}

func (f *failingStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.memoryCache.Set(ctx, key, value, ttl)
}

func (f *failingStore) DeleteByPattern(ctx context.Context, pattern string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.memoryCache.DeleteByPattern(ctx, pattern)
}

func TestCacheServiceDisabled(t *testing.T) {
	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
	assert.False(t, nilCache.Lookup(context.Background(), "k", &struct{}{}))
	nilCache.Store(context.Background(), "k", 1, 0)
	nilCache.Invalidate(context.Background(), "*")

	store := newMemoryCache()
	off := NewCacheService(store, nil, 0, nil, false)
	off.Store(context.Background(), "k", 1, 0)
	assert.Empty(t, store.entries)

	assert.False(t, NewCacheService(nil, nil, 0, nil, true).Enabled())
}

func TestCacheServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	metrics := NewMetricsService()
	svc := NewCacheService(newMemoryCache(), metrics, time.Minute, nil, true)

	var out map[string]int
	assert.False(t, svc.Lookup(ctx, "counts", &out))

	svc.Store(ctx, "counts", map[string]int{"courses": 3}, 0)
	require.True(t, svc.Lookup(ctx, "counts", &out))
	assert.Equal(t, 3, out["courses"])

	svc.Invalidate(ctx, "count*")
	assert.False(t, svc.Lookup(ctx, "counts", &out))
}

func TestCacheServiceSwallowsStoreErrors(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{memoryCache: *newMemoryCache(), setErr: errors.New("read-only replica"), deleteErr: errors.New("timeout")}
	svc := NewCacheService(store, nil, 0, nil, true)

	svc.Store(ctx, "k", 1, 0)
	assert.Empty(t, store.entries)
	svc.Invalidate(ctx, "a", "b")

	store.getErr = errors.New("connection refused")
	var v int
	assert.False(t, svc.Lookup(ctx, "k", &v))
}
