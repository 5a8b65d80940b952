package travel

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kcirtapfromspace/offleash-sub004/internal/config"
)

// RedisTravelCache stores travel estimates in redis so repeated slot and
// route queries for the same location pairs skip the provider.
type RedisTravelCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisTravelCache(client *redis.Client, ttl time.Duration) *RedisTravelCache {
	return &RedisTravelCache{client: client, ttl: ttl}
}

func travelKey(from, to string) string {
	return fmt.Sprintf("travel:%s:%s", from, to)
}

func (c *RedisTravelCache) Get(ctx context.Context, fromLocationID, toLocationID string) (int64, bool, error) {
	if c.client == nil {
		return 0, false, fmt.Errorf("redis client is nil")
	}
	val, err := c.client.Get(ctx, travelKey(fromLocationID, toLocationID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get travel estimate from redis: %w", err)
	}

	minutes, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse cached travel estimate %q: %w", val, err)
	}
	return minutes, true, nil
}

func (c *RedisTravelCache) Set(ctx context.Context, fromLocationID, toLocationID string, minutes int64) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	key := travelKey(fromLocationID, toLocationID)
	if err := c.client.Set(ctx, key, strconv.FormatInt(minutes, 10), c.ttl).Err(); err != nil {
		return fmt.Errorf("set travel estimate in redis: %w", err)
	}
	return nil
}
