package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/yuhigori/mujinnaiken/models"
)

func TestPropertyCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewPropertyCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	property := &models.Property{
		ID:      3,
		Name:    "サンプルマンション A棟 203号室",
		Address: "東京都渋谷区神南1-1-1",
	}
	cache.Put(context.Background(), property)

	got, ok := cache.Get(context.Background(), 3)
	require.True(t, ok)
	require.Equal(t, property.Name, got.Name)
	require.Equal(t, property.Address, got.Address)

	_, ok = cache.Get(context.Background(), 99)
	require.False(t, ok)
}

func TestPropertyCacheExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewPropertyCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	cache.Put(context.Background(), &models.Property{ID: 1, Name: "n", Address: "a"})
	mr.FastForward(propertyCacheTTL + 1)

	_, ok := cache.Get(context.Background(), 1)
	require.False(t, ok)
}

func TestPropertyCacheNilSafe(t *testing.T) {
	var cache *PropertyCache

	cache.Put(context.Background(), &models.Property{ID: 1})
	_, ok := cache.Get(context.Background(), 1)
	require.False(t, ok)

	// Unconfigured Redis yields a nil client and a no-op cache.
	noop := NewPropertyCache(NewRedis(""))
	noop.Put(context.Background(), &models.Property{ID: 2})
	_, ok = noop.Get(context.Background(), 2)
	require.False(t, ok)
}
