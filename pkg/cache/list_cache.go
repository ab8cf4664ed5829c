package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultListCacheTTL bounds staleness if an invalidation is ever lost.
	DefaultListCacheTTL = 5 * time.Minute

	listCacheKey      = "items:list"
	listGenerationKey = "items:list:gen"
)

var (
	// ErrCacheMiss is returned by ItemListCache.Get when no snapshot is stored.
	ErrCacheMiss = errors.New("cache miss")

	// ErrStaleGeneration is returned by ItemListCache.Set when an invalidation
	// happened after the caller read the generation. Nothing is written.
	ErrStaleGeneration = errors.New("cache generation changed")
)

// CachedItem is the read model stored in Redis; it mirrors the API item shape.
type CachedItem struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemListCache stores the full ordered item list as a single JSON snapshot.
// The list is small and always read whole, so one key beats per-item hashes.
// Every invalidation bumps a generation counter, and Set only writes a
// snapshot taken under the current generation.
// Key format: "items:list", "items:list:gen"
type ItemListCache struct {
	client *RedisClient
	ttl    time.Duration
}

// NewItemListCache creates an ItemListCache backed by r. A non-positive ttl
// falls back to DefaultListCacheTTL.
func NewItemListCache(r *RedisClient, ttl time.Duration) *ItemListCache {
	if ttl <= 0 {
		ttl = DefaultListCacheTTL
	}
	return &ItemListCache{client: r, ttl: ttl}
}

// Get returns the cached snapshot, or ErrCacheMiss when none is stored.
func (c *ItemListCache) Get(ctx context.Context) ([]CachedItem, error) {
	raw, err := c.client.Client().Get(ctx, listCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var items []CachedItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return items, nil
}

// Generation returns the current invalidation counter. Read it before loading
// the list from Postgres and pass it to Set.
func (c *ItemListCache) Generation(ctx context.Context) (int64, error) {
	return readGeneration(ctx, c.client.Client())
}

// Set stores items as the snapshot if the generation still equals gen.
// Returns ErrStaleGeneration when a write invalidated the list in between.
func (c *ItemListCache) Set(ctx context.Context, gen int64, items []CachedItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}

	err = c.client.Client().Watch(ctx, func(tx *redis.Tx) error {
		cur, err := readGeneration(ctx, tx)
		if err != nil {
			return err
		}
		if cur != gen {
			return ErrStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, listCacheKey, raw, c.ttl)
			return nil
		})
		return err
	}, listGenerationKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return ErrStaleGeneration
	default:
		return fmt.Errorf("cache set: %w", err)
	}
}

// Invalidate bumps the generation and drops the snapshot so the next read
// goes to Postgres.
func (c *ItemListCache) Invalidate(ctx context.Context) error {
	_, err := c.client.Client().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, listGenerationKey)
		pipe.Del(ctx, listCacheKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func readGeneration(ctx context.Context, rdb redis.Cmdable) (int64, error) {
	gen, err := rdb.Get(ctx, listGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return gen, nil
}
