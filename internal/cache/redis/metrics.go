// Package redis caches immutable metrics records and remembers processed
// event IDs in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/reputation/internal/domain"
)

const metricsKeyPrefix = "reputation:metrics:"

// MetricsCache stores generated metrics by ID. Records never change after
// they are appended, so entries only expire.
type MetricsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMetricsCache creates a cache whose entries live for ttl.
func NewMetricsCache(client *redis.Client, ttl time.Duration) *MetricsCache {
	return &MetricsCache{client: client, ttl: ttl}
}

// Get returns the cached record, or false on a miss.
func (c *MetricsCache) Get(ctx context.Context, id string) (*domain.ReputationMetrics, bool, error) {
	data, err := c.client.Get(ctx, metricsKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get metrics: %w", err)
	}

	var m domain.ReputationMetrics
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false, fmt.Errorf("unmarshal metrics: %w", err)
	}
	return &m, true, nil
}

// Set caches m under its ID.
func (c *MetricsCache) Set(ctx context.Context, m *domain.ReputationMetrics) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	if err := c.client.Set(ctx, metricsKeyPrefix+m.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set metrics: %w", err)
	}
	return nil
}

// Ping checks the connection; used by the readiness check.
func (c *MetricsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
