// Package cache provides a Redis-backed read-through cache for event
// occupancy stats. Values are computed from committed storage state only
// and expire after a short TTL; register/cancel invalidate eagerly so a
// stale figure never outlives the next admission on the same event.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"event-admission/internal/model"

	"github.com/redis/go-redis/v9"
)

const statsKeyPrefix = "event:stats:"

// StatsCache caches EventStats per event id in Redis.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache constructs a StatsCache with the given TTL.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

// Get returns the cached stats for an event, or (nil, nil) on a miss.
func (c *StatsCache) Get(ctx context.Context, eventID string) (*model.EventStats, error) {
	data, err := c.client.Get(ctx, statsKeyPrefix+eventID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats model.EventStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Set stores stats for an event under the configured TTL.
func (c *StatsCache) Set(ctx context.Context, eventID string, stats *model.EventStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsKeyPrefix+eventID, data, c.ttl).Err()
}

// Invalidate drops the cached stats for an event.
func (c *StatsCache) Invalidate(ctx context.Context, eventID string) error {
	return c.client.Del(ctx, statsKeyPrefix+eventID).Err()
}
