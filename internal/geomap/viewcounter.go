// waypoint | 2026
// viewcounter.go

package geomap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const viewCountKeyPrefix = "waypoint:map_views:"

// RedisViewCounter counts public-map reads with a plain INCR per view.
// Counts survive restarts but are not tied to unique visitors.
type RedisViewCounter struct {
	client *redis.Client
}

func NewRedisViewCounter(client *redis.Client) *RedisViewCounter {
	return &RedisViewCounter{client: client}
}

func (c *RedisViewCounter) Increment(
	ctx context.Context,
	publicID string,
) (int64, error) {
	count, err := c.client.Incr(ctx, viewCountKeyPrefix+publicID).Result()
	if err != nil {
		return 0, fmt.Errorf("increment view count: %w", err)
	}

	return count, nil
}
