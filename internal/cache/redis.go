// Package cache keeps rendered listing views in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seogyeonga/auction-radar/internal/domain"
	"github.com/seogyeonga/auction-radar/internal/metrics"
)

const keyPrefix = "auction:view:"

// ViewCache stores domain.ListingView JSON by listing id. A nil *ViewCache is
// valid and caches nothing.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewViewCache(client *redis.Client, ttl time.Duration) *ViewCache {
	return &ViewCache{client: client, ttl: ttl}
}

// NewRedisClient builds the client from connection settings.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func (c *ViewCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *ViewCache) Get(ctx context.Context, id string) (domain.ListingView, bool, error) {
	if c == nil {
		return domain.ListingView{}, false, nil
	}
	raw, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return domain.ListingView{}, false, nil
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return domain.ListingView{}, false, err
	}

	var v domain.ListingView
	if err := json.Unmarshal(raw, &v); err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return domain.ListingView{}, false, fmt.Errorf("decode cached view: %w", err)
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return v, true, nil
}

func (c *ViewCache) Set(ctx context.Context, v domain.ListingView) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+v.Listing.ID, data, c.ttl).Err()
}

func (c *ViewCache) Invalidate(ctx context.Context, ids ...string) error {
	if c == nil || len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, keyPrefix+id)
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *ViewCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
