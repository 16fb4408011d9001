package utils

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_GetHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	cache := NewRedisCache(db)
	mock.ExpectGet("escrow:order:order-1").SetVal(`{"id":"escrow-1"}`)

	val, ok, err := cache.Get(context.Background(), "escrow:order:order-1")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"escrow-1"}`, val)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_GetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	cache := NewRedisCache(db)
	mock.ExpectGet("escrow:order:missing").RedisNil()

	_, ok, err := cache.Get(context.Background(), "escrow:order:missing")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_SetWithTTL(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	cache := NewRedisCache(db)
	mock.ExpectSet("balance:user-1", `{"available":"0"}`, 30*time.Second).SetVal("OK")

	err := cache.Set(context.Background(), "balance:user-1", `{"available":"0"}`, 30*time.Second)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_Invalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	cache := NewRedisCache(db)
	mock.ExpectDel("escrow:order:order-1", "balance:user-1").SetVal(2)

	err := cache.Invalidate(context.Background(), "escrow:order:order-1", "balance:user-1")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_InvalidateNothing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	cache := NewRedisCache(db)

	// No keys means no redis round trip at all.
	err := cache.Invalidate(context.Background())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryCache_SetGetInvalidate(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key-1", "value-1", time.Minute))

	val, ok, err := cache.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value-1", val)

	require.NoError(t, cache.Invalidate(ctx, "key-1"))

	_, ok, err = cache.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key-1", "value-1", 10*time.Millisecond))

	time.Sleep(25 * time.Millisecond)

	_, ok, err := cache.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key-1", "value-1", 0))

	time.Sleep(10 * time.Millisecond)

	_, ok, err := cache.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, ok)
}
