package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kopstant/lms-backend/internal/config"
	"github.com/kopstant/lms-backend/internal/models"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache, mr
}

func TestSetAndGetCourse(t *testing.T) {
	cache, _ := setupTestCache(t)

	stored := models.Course{ID: 5, Title: "Go для начинающих", OwnerUID: "uid-1"}
	err := cache.Set("course:5", stored, time.Hour)
	require.NoError(t, err)

	var loaded models.Course
	found, err := cache.Get("course:5", &loaded)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, stored.Title, loaded.Title)
	assert.Equal(t, stored.OwnerUID, loaded.OwnerUID)
}

func TestGetMiss(t *testing.T) {
	cache, _ := setupTestCache(t)

	var out models.Course
	found, err := cache.Get("course:404", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetExpired(t *testing.T) {
	cache, mr := setupTestCache(t)

	require.NoError(t, cache.Set("course:5", models.Course{ID: 5}, time.Minute))
	mr.FastForward(2 * time.Minute)

	var out models.Course
	found, err := cache.Get("course:5", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	cache, _ := setupTestCache(t)

	err := cache.Db.Set(context.Background(), "course:5", []byte("not-json"), time.Minute).Err()
	require.NoError(t, err)

	var out models.Course
	found, err := cache.Get("course:5", &out)
	assert.False(t, found)
	assert.Error(t, err)
}

func TestInvalidate(t *testing.T) {
	cache, _ := setupTestCache(t)

	require.NoError(t, cache.Set("course:5", models.Course{ID: 5}, time.Hour))
	require.NoError(t, cache.Invalidate("course:5"))

	var out models.Course
	found, err := cache.Get("course:5", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInitServerInvalidAddr(t *testing.T) {
	cfg := config.RedisConnection{
		AddressRedis: "127.0.0.1:9999",
	}

	cache, err := InitServer(context.Background(), cfg)
	assert.Nil(t, cache)
	assert.Error(t, err)
}
