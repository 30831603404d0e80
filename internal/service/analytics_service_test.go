package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/feconecta/feconecta-api/internal/repository"
)

func TestAnalyticsSummaryAggregatesAndCaches(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")
	f.createPost(t, "post um #graça")
	f.createPost(t, "post dois #graça")
	f.createPost(t, "post três #fé")

	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	svc := NewAnalyticsService(repository.NewAnalyticsRepository(f.db), unconfiguredAI(t), cache, time.Minute, testLogger())

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.False(t, summary.CacheHit)
	require.Equal(t, int64(1), summary.Totals.Profiles)
	require.Equal(t, int64(3), summary.Totals.Posts)
	require.Equal(t, "graça", summary.TopHashtags[0])
	require.True(t, summary.Sentiment.Placeholder)
	require.NotEmpty(t, summary.Insight)
	require.NotEmpty(t, summary.PostsPerDay)

	cached, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	require.Equal(t, summary.Totals, cached.Totals)
}

func TestAnalyticsSummaryWithoutCache(t *testing.T) {
	f := newFixture(t)

	svc := NewAnalyticsService(repository.NewAnalyticsRepository(f.db), unconfiguredAI(t), nil, time.Minute, testLogger())

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Zero(t, summary.Totals.Posts)
	require.Empty(t, summary.PostsPerDay)
}
