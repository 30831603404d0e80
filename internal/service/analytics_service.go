package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/feconecta/feconecta-api/internal/models"
	"github.com/feconecta/feconecta-api/internal/repository"
	"github.com/feconecta/feconecta-api/pkg/ai"
)

const analyticsCacheKey = "feconecta:analytics:summary"

// AnalyticsSummary is the admin dashboard view: headline counters, the
// posting trend over the last weeks, trending hashtags, the overall tone of
// recent posts and a generated narrative summary.
type AnalyticsSummary struct {
	Totals      repository.CommunityTotals `json:"totals"`
	PostsPerDay []repository.DailyCount    `json:"posts_per_day"`
	TopHashtags []string                   `json:"top_hashtags"`
	Sentiment   ai.SentimentResult         `json:"sentiment"`
	Insight     string                     `json:"insight"`
	GeneratedAt time.Time                  `json:"generated_at"`
	CacheHit    bool                       `json:"cache_hit"`
}

// AnalyticsService aggregates community activity for the admin dashboard.
type AnalyticsService struct {
	repo     repository.AnalyticsRepository
	ai       *ai.Client
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(repo repository.AnalyticsRepository, aiClient *ai.Client, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) *AnalyticsService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &AnalyticsService{
		repo:     repo,
		ai:       aiClient,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "analytics_service").Logger(),
		now:      time.Now,
	}
}

// Summary returns the dashboard aggregate, served from cache when fresh.
func (s *AnalyticsService) Summary(ctx context.Context) (AnalyticsSummary, error) {
	tracer := otel.Tracer("github.com/feconecta/feconecta-api/internal/service/analytics")
	ctx, span := tracer.Start(ctx, "analytics.aggregate")
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, analyticsCacheKey).Result()
		if err == nil {
			var summary AnalyticsSummary
			if unmarshalErr := json.Unmarshal([]byte(cached), &summary); unmarshalErr == nil {
				summary.CacheHit = true
				span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
				return summary, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read analytics cache")
			span.RecordError(err)
		}
	}

	totals, err := s.repo.Totals(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "totals_failed")
		return AnalyticsSummary{}, err
	}

	since := s.now().AddDate(0, 0, -28)
	recent, err := s.repo.PostsSince(ctx, since)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "posts_since_failed")
		return AnalyticsSummary{}, err
	}

	tags, err := s.repo.TopHashtags(ctx, 10)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "top_hashtags_failed")
		return AnalyticsSummary{}, err
	}

	summary := AnalyticsSummary{
		Totals:      totals,
		PostsPerDay: bucketByDay(recent),
		GeneratedAt: s.now(),
	}
	for _, tag := range tags {
		summary.TopHashtags = append(summary.TopHashtags, tag.Name)
	}

	summary.Sentiment = s.ai.Sentiment(ctx, joinRecentContent(recent))
	summary.Insight = s.ai.Insight(ctx, map[string]interface{}{
		"totals":       totals,
		"top_hashtags": summary.TopHashtags,
		"period_days":  28,
		"period_posts": len(recent),
	}).Summary

	span.SetAttributes(
		attribute.Int64("analytics.profiles", totals.Profiles),
		attribute.Int64("analytics.posts", totals.Posts),
		attribute.Int("analytics.period_posts", len(recent)),
	)

	if s.cache != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := s.cache.Set(ctx, analyticsCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store analytics cache")
				span.RecordError(err)
			}
		}
	}

	return summary, nil
}

func bucketByDay(posts []models.Post) []repository.DailyCount {
	if len(posts) == 0 {
		return nil
	}

	byDay := map[time.Time]int64{}
	for _, post := range posts {
		day := post.CreatedAt.UTC().Truncate(24 * time.Hour)
		byDay[day]++
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	counts := make([]repository.DailyCount, 0, len(days))
	for _, day := range days {
		counts = append(counts, repository.DailyCount{Day: day, Count: byDay[day]})
	}

	return counts
}

// joinRecentContent concatenates a bounded sample of post text for the
// sentiment pass.
func joinRecentContent(posts []models.Post) string {
	const maxPosts = 30

	var b strings.Builder
	for i, post := range posts {
		if i >= maxPosts {
			break
		}
		if post.Content == "" {
			continue
		}
		b.WriteString(post.Content)
		b.WriteString("\n")
	}

	return b.String()
}
