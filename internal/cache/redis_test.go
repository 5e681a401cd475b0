package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/school-aggregator/internal/config"
)

type testStruct struct {
	Name string
	Age  int
}

func setupTestCache(t *testing.T) *Cache {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
		Password:     "",
		DB:           0,
		User:         "",
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache
}

func TestSetAndGet(t *testing.T) {
	cache := setupTestCache(t)

	expected := testStruct{Name: "Alice", Age: 30}
	err := cache.Set("account:1:news", expected, time.Minute)
	require.NoError(t, err)

	var actual testStruct
	found, err := cache.Get("account:1:news", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache := setupTestCache(t)

	var out testStruct
	found, err := cache.Get("no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache := setupTestCache(t)

	require.NoError(t, cache.Set("account:1:news", testStruct{Name: "Bob"}, 0))
	require.NoError(t, cache.Invalidate("account:1:news"))

	var out testStruct
	found, err := cache.Get("account:1:news", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestKey_Namespacing(t *testing.T) {
	assert.Equal(t, "account:abc:evaluations", Key("abc", "evaluations"))
	assert.NotEqual(t, Key("abc", "news"), Key("def", "news"))
}
