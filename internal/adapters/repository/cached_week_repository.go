package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
)

var _ domain.TransactionalStore = (*CachedWeekRepository)(nil)

const (
	weekListKey     = "weeks:all"
	weekVersionKey  = "weeks:version"
	DefaultCacheTTL = 30 * time.Minute
)

// CachedWeekRepository puts a Redis cache-aside layer in front of week reads.
// Weeks never change after creation, so only creation and deletion invalidate.
// Day and habit calls go straight to the wrapped store.
//
// Every invalidation bumps weeks:version. Reads fill the cache under WATCH
// on that key, so a value read before a concurrent write is never cached
// after the write's invalidation.
type CachedWeekRepository struct {
	domain.TransactionalStore
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedWeekRepository(next domain.TransactionalStore, cache *redis.Client, ttl time.Duration) *CachedWeekRepository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedWeekRepository{
		TransactionalStore: next,
		cache:              cache,
		ttl:                ttl,
	}
}

func (r *CachedWeekRepository) weekKey(id string) string {
	return fmt.Sprintf("week:%s", id)
}

func (r *CachedWeekRepository) invalidate(ctx context.Context, keys ...string) {
	_, err := r.cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, weekVersionKey)
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		log.Printf("[CACHE] Failed to invalidate %v: %v", keys, err)
	}
}

// load reads key into dest. It reports false on a miss or on unusable data.
func (r *CachedWeekRepository) load(ctx context.Context, key string, dest interface{}) bool {
	val, err := r.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[CACHE] Redis read error: %v", err)
		}
		return false
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		log.Printf("[CACHE] Corrupted data under %s, cleaning up key", key)
		r.invalidate(ctx, key)
		return false
	}
	return true
}

// fill runs fetch exactly once and caches its result under key, unless the
// fetch failed or a week write bumped the version while it ran. Without
// Redis it only runs fetch.
func (r *CachedWeekRepository) fill(ctx context.Context, key string, fetch func() (interface{}, error)) {
	fetched := false
	err := r.cache.Watch(ctx, func(tx *redis.Tx) error {
		fetched = true
		value, err := fetch()
		if err != nil {
			return nil
		}
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}, weekVersionKey)

	if !fetched {
		_, _ = fetch()
	}

	switch {
	case err == nil:
	case errors.Is(err, redis.TxFailedErr):
		log.Printf("[CACHE] Weeks changed while loading %s, not caching", key)
	default:
		log.Printf("[CACHE] Redis set error: %v", err)
	}
}

func (r *CachedWeekRepository) ListWeeks(ctx context.Context) ([]*domain.Week, error) {
	var weeks []*domain.Week
	if r.load(ctx, weekListKey, &weeks) {
		return weeks, nil
	}

	var err error
	r.fill(ctx, weekListKey, func() (interface{}, error) {
		weeks, err = r.TransactionalStore.ListWeeks(ctx)
		return weeks, err
	})
	if err != nil {
		return nil, err
	}
	return weeks, nil
}

func (r *CachedWeekRepository) GetWeek(ctx context.Context, id string) (*domain.Week, error) {
	key := r.weekKey(id)

	var week domain.Week
	if r.load(ctx, key, &week) {
		return &week, nil
	}

	var fetched *domain.Week
	var err error
	r.fill(ctx, key, func() (interface{}, error) {
		fetched, err = r.TransactionalStore.GetWeek(ctx, id)
		return fetched, err
	})
	if err != nil {
		return nil, err
	}
	return fetched, nil
}

func (r *CachedWeekRepository) CreateWeek(ctx context.Context, week *domain.Week) error {
	if err := r.TransactionalStore.CreateWeek(ctx, week); err != nil {
		return err
	}
	r.invalidate(ctx, weekListKey)
	return nil
}

func (r *CachedWeekRepository) CreateWeekWithDays(ctx context.Context, week *domain.Week, days []*domain.Day) error {
	if err := r.TransactionalStore.CreateWeekWithDays(ctx, week, days); err != nil {
		return err
	}
	r.invalidate(ctx, weekListKey)
	return nil
}

func (r *CachedWeekRepository) DeleteWeek(ctx context.Context, id string) error {
	defer r.invalidate(ctx, weekListKey, r.weekKey(id))

	return r.TransactionalStore.DeleteWeek(ctx, id)
}
