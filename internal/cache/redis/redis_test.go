package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/reputation/internal/domain"
	"github.com/utafrali/reputation/pkg/kafka"
)

var _ kafka.IdempotencyStore = (*IdempotencyStore)(nil)

func setupTestRedis(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func sampleMetrics() *domain.ReputationMetrics {
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	return &domain.ReputationMetrics{
		ID:        "m-001",
		Period:    domain.PeriodMonthly,
		StartDate: start,
		EndDate:   start.AddDate(0, 1, 0),
		Metrics: domain.MetricsData{
			AverageRating:   3.5,
			TotalReviews:    2,
			ReviewsBySource: map[string]int{"google": 2},
			ReviewsByRating: map[string]int{"3": 1, "4": 1},
			TopKeywords:     []domain.KeywordCount{{Word: "coffee", Count: 2, Relevance: 0.9}},
			RatingTrend:     []domain.TrendPoint{},
			VolumeTrend:     []domain.TrendPoint{{Timestamp: start, Value: 2}},
		},
		GeneratedAt: start.AddDate(0, 1, 1),
	}
}

func TestMetricsCache_SetAndGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewMetricsCache(client, time.Hour)
	ctx := context.Background()

	m := sampleMetrics()
	require.NoError(t, cache.Set(ctx, m))
	assert.True(t, mr.Exists("reputation:metrics:m-001"))
	assert.Equal(t, time.Hour, mr.TTL("reputation:metrics:m-001"))

	got, ok, err := cache.Get(ctx, "m-001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, m.Metrics, got.Metrics)
	assert.True(t, m.StartDate.Equal(got.StartDate))
}

func TestMetricsCache_Miss(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewMetricsCache(client, time.Hour)

	got, ok, err := cache.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestMetricsCache_Expiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewMetricsCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sampleMetrics()))
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "m-001")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMetricsCache_CorruptEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewMetricsCache(client, time.Minute)
	require.NoError(t, mr.Set("reputation:metrics:bad", "{not json"))

	_, _, err := cache.Get(context.Background(), "bad")
	assert.Error(t, err)
}

func TestMetricsCache_ServerDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewMetricsCache(client, time.Minute)
	mr.Close()

	_, _, err := cache.Get(context.Background(), "m-001")
	assert.Error(t, err)
	assert.Error(t, cache.Ping(context.Background()))
}

func TestIdempotencyStore_AddAndContains(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewIdempotencyStore(client, time.Hour)
	ctx := context.Background()

	seen, err := store.Contains(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.Add(ctx, "evt-1"))
	first, _ := mr.Get("reputation:event:evt-1")
	mr.FastForward(time.Second)
	require.NoError(t, store.Add(ctx, "evt-1"))
	second, _ := mr.Get("reputation:event:evt-1")
	assert.Equal(t, first, second)

	seen, err = store.Contains(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, seen)

	mr.FastForward(2 * time.Hour)
	seen, _ = store.Contains(ctx, "evt-1")
	assert.False(t, seen)
}
