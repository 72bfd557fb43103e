// Package cache stores retailer price quotes between lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dupefinder:prices:"

// PriceCache stores sorted quote lists per product
type PriceCache interface {
	Get(ctx context.Context, name, brand string) ([]domain.RetailerPrice, bool, error)
	Set(ctx context.Context, name, brand string, prices []domain.RetailerPrice) error
}

// RedisPriceCache keeps JSON-encoded quote lists in Redis with a TTL
type RedisPriceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPriceCache(rdb *redis.Client, ttl time.Duration) *RedisPriceCache {
	return &RedisPriceCache{rdb: rdb, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and verifies the server responds.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

// Key returns the cache key for a product
func Key(name, brand string) string {
	return keyPrefix + normalize(brand) + ":" + normalize(name)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func (c *RedisPriceCache) Get(ctx context.Context, name, brand string) ([]domain.RetailerPrice, bool, error) {
	raw, err := c.rdb.Get(ctx, Key(name, brand)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var prices []domain.RetailerPrice
	if err := json.Unmarshal(raw, &prices); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached prices: %w", err)
	}
	return prices, true, nil
}

func (c *RedisPriceCache) Set(ctx context.Context, name, brand string, prices []domain.RetailerPrice) error {
	raw, err := json.Marshal(prices)
	if err != nil {
		return fmt.Errorf("failed to encode prices: %w", err)
	}
	return c.rdb.Set(ctx, Key(name, brand), raw, c.ttl).Err()
}

// NoopPriceCache never stores anything
type NoopPriceCache struct{}

func (NoopPriceCache) Get(context.Context, string, string) ([]domain.RetailerPrice, bool, error) {
	return nil, false, nil
}

func (NoopPriceCache) Set(context.Context, string, string, []domain.RetailerPrice) error {
	return nil
}
