package repository

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-weeks/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
)

func setupTestRedis(t *testing.T) *redis.Client {
	db, _ := strconv.Atoi(getEnv("REDIS_TEST_DB", "1"))
	rdb, err := cache.NewRedisClient(context.Background(), cache.Options{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", "secret_redis_pass_local"),
		DB:       db,
	})
	if err != nil {
		t.Skipf("Skipping cache tests: %v", err)
	}
	require.NoError(t, rdb.FlushDB(context.Background()).Err())
	return rdb
}

func TestCachedWeekRepository_Contract(t *testing.T) {
	rdb := setupTestRedis(t)
	defer rdb.Close()

	runStoreContract(t, func(t *testing.T) domain.TransactionalStore {
		rdb.FlushDB(context.Background())
		return NewCachedWeekRepository(NewInMemoryStore(), rdb, time.Minute)
	})
}

func TestCachedWeekRepository_CacheAside(t *testing.T) {
	rdb := setupTestRedis(t)
	defer rdb.Close()
	ctx := context.Background()

	backing := NewInMemoryStore()
	repo := NewCachedWeekRepository(backing, rdb, time.Minute)

	t.Run("List is served from cache until a write", func(t *testing.T) {
		seedWeek(t, repo, "2024-01-01")

		weeks, err := repo.ListWeeks(ctx)
		require.NoError(t, err)
		require.Len(t, weeks, 1)

		exists, err := rdb.Exists(ctx, weekListKey).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)

		// written behind the cache's back
		seedWeek(t, backing, "2024-02-01")
		weeks, _ = repo.ListWeeks(ctx)
		assert.Len(t, weeks, 1, "stale read proves the cache hit")

		seedWeek(t, repo, "2024-03-01")
		weeks, _ = repo.ListWeeks(ctx)
		assert.Len(t, weeks, 3)
		assert.Equal(t, "2024-03-01", weeks[0].StartDate.String())
	})

	t.Run("Get caches the week and delete evicts it", func(t *testing.T) {
		week, _ := seedWeek(t, repo, "2024-04-01")

		fetched, err := repo.GetWeek(ctx, week.ID)
		require.NoError(t, err)
		assert.Equal(t, week.StartDate, fetched.StartDate)

		cached, err := rdb.Get(ctx, repo.weekKey(week.ID)).Result()
		require.NoError(t, err)
		assert.Contains(t, cached, `"start_date":"2024-04-01"`)

		require.NoError(t, repo.DeleteWeek(ctx, week.ID))

		_, err = repo.GetWeek(ctx, week.ID)
		assert.ErrorIs(t, err, domain.ErrWeekNotFound)
	})

	t.Run("Corrupted entry falls back to the store", func(t *testing.T) {
		week, _ := seedWeek(t, repo, "2024-05-01")
		require.NoError(t, rdb.Set(ctx, repo.weekKey(week.ID), "{not json", time.Minute).Err())

		fetched, err := repo.GetWeek(ctx, week.ID)
		require.NoError(t, err)
		assert.Equal(t, week.ID, fetched.ID)
	})
}

// deletingStore deletes the week through the cache right after the store
// read of GetWeek, before the cache is filled.
type deletingStore struct {
	domain.TransactionalStore
	repo *CachedWeekRepository
	once bool
}

func (s *deletingStore) GetWeek(ctx context.Context, id string) (*domain.Week, error) {
	week, err := s.TransactionalStore.GetWeek(ctx, id)
	if !s.once {
		s.once = true
		if delErr := s.repo.DeleteWeek(ctx, id); delErr != nil {
			return nil, delErr
		}
	}
	return week, err
}

func TestCachedWeekRepository_DeleteDuringFill(t *testing.T) {
	rdb := setupTestRedis(t)
	defer rdb.Close()
	ctx := context.Background()

	backing := NewInMemoryStore()
	racing := &deletingStore{TransactionalStore: backing}
	repo := NewCachedWeekRepository(racing, rdb, time.Minute)
	racing.repo = repo

	week, _ := seedWeek(t, backing, "2024-06-01")

	fetched, err := repo.GetWeek(ctx, week.ID)
	require.NoError(t, err, "the read itself saw the week")
	assert.Equal(t, week.ID, fetched.ID)

	exists, err := rdb.Exists(ctx, repo.weekKey(week.ID)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists, "a week deleted during the read is not cached")

	_, err = repo.GetWeek(ctx, week.ID)
	assert.ErrorIs(t, err, domain.ErrWeekNotFound)
}

func TestCachedWeekRepository_RedisDown(t *testing.T) {
	ctx := context.Background()
	badRdb := redis.NewClient(&redis.Options{Addr: "localhost:9999"})
	defer badRdb.Close()

	repo := NewCachedWeekRepository(NewInMemoryStore(), badRdb, time.Minute)
	week, _ := seedWeek(t, repo, "2024-01-01")

	weeks, err := repo.ListWeeks(ctx)
	require.NoError(t, err, "cache failures never fail reads")
	assert.Len(t, weeks, 1)

	fetched, err := repo.GetWeek(ctx, week.ID)
	require.NoError(t, err)
	assert.Equal(t, week.ID, fetched.ID)
}
