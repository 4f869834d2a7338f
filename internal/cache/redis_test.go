package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/config"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{AddressRedis: mr.Addr()}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func TestSetAndGetSnapshot(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	plan := "p1"
	expected := models.Snapshot{
		Subscribers: []models.Subscriber{{ID: "u1", Name: "Ana", PlanID: &plan, Status: models.StatusActive, JoinDate: models.NewDate(2023, 1, 15)}},
		Plans:       []models.Plan{{ID: "p1", Name: "Basic", Speed: 25, Price: 999}},
		Payments:    []models.Payment{{ID: "x", UserID: "u1", Amount: 999, Date: models.NewDate(2024, 6, 1), Method: models.MethodCash}},
	}
	require.NoError(t, cache.Set(ctx, "snapshot", expected, time.Minute))

	var actual models.Snapshot
	found, err := cache.Get(ctx, "snapshot", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache, _ := setupTestCache(t)

	var out models.Snapshot
	found, err := cache.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSetExpires(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	mr.FastForward(2 * time.Minute)

	var out string
	found, err := cache.Get(ctx, "key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "key"))

	var out string
	found, err := cache.Get(ctx, "key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Db.Set(ctx, "bad", []byte("not-json"), time.Minute).Err())

	var out models.Snapshot
	found, err := cache.Get(ctx, "bad", &out)
	assert.False(t, found)
	assert.Error(t, err)
}

func TestMarkOnce(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	first, err := cache.MarkOnce(ctx, "reminder:u1:2024-06-15", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := cache.MarkOnce(ctx, "reminder:u1:2024-06-15", time.Hour)
	require.NoError(t, err)
	assert.False(t, second)

	mr.FastForward(2 * time.Hour)
	third, err := cache.MarkOnce(ctx, "reminder:u1:2024-06-15", time.Hour)
	require.NoError(t, err)
	assert.True(t, third)
}

func TestInitServerInvalidAddr(t *testing.T) {
	cfg := config.RedisConnection{AddressRedis: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond}

	_, err := InitServer(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c Noop

	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	found, err := c.Get(ctx, "k", new(int))
	require.NoError(t, err)
	assert.False(t, found)
	ok, err := c.MarkOnce(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
