package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/feconecta/feconecta-api/internal/scripture"
	"github.com/feconecta/feconecta-api/pkg/ai"
)

const dailyMessageKeyPrefix = "feconecta:daily:"

// DailyMessage is the verse of the day with a short generated reflection.
type DailyMessage struct {
	Verse       scripture.Verse `json:"verse"`
	Reflection  string          `json:"reflection"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// DailyMessageService produces the daily devotional message. Results are
// cached in redis for the calendar day so every caller sees the same verse.
type DailyMessageService struct {
	scriptures *scripture.Client
	ai         *ai.Client
	cache      *redis.Client
	ttl        time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewDailyMessageService constructs the daily message service. now may be
// nil for wall time.
func NewDailyMessageService(scriptures *scripture.Client, aiClient *ai.Client, cache *redis.Client, ttl time.Duration, logger zerolog.Logger, now func() time.Time) *DailyMessageService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}

	return &DailyMessageService{
		scriptures: scriptures,
		ai:         aiClient,
		cache:      cache,
		ttl:        ttl,
		logger:     logger.With().Str("component", "daily_message_service").Logger(),
		now:        now,
	}
}

// Today returns the cached message for the current day, generating and
// caching a new one when absent.
func (s *DailyMessageService) Today(ctx context.Context) (DailyMessage, error) {
	key := s.cacheKey()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			var message DailyMessage
			if err := json.Unmarshal([]byte(cached), &message); err == nil {
				return message, nil
			}
			s.logger.Warn().Err(err).Msg("corrupt daily message cache entry")
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("daily message cache read failed")
		}
	}

	return s.generate(ctx, key)
}

// Refresh discards the cached message and generates a fresh one.
func (s *DailyMessageService) Refresh(ctx context.Context) (DailyMessage, error) {
	key := s.cacheKey()

	if s.cache != nil {
		if err := s.cache.Del(ctx, key).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("daily message cache invalidation failed")
		}
	}

	return s.generate(ctx, key)
}

func (s *DailyMessageService) generate(ctx context.Context, key string) (DailyMessage, error) {
	verse, err := s.scriptures.Random(ctx)
	if err != nil {
		return DailyMessage{}, fmt.Errorf("fetch daily verse: %w", err)
	}

	message := DailyMessage{
		Verse:       verse,
		GeneratedAt: s.now(),
	}

	insight := s.ai.Insight(ctx, map[string]string{
		"verse":     verse.Text,
		"reference": verse.Reference,
	})
	message.Reflection = insight.Summary

	if s.cache != nil {
		payload, err := json.Marshal(message)
		if err == nil {
			if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("daily message cache write failed")
			}
		}
	}

	s.logger.Info().Str("reference", verse.Reference).Msg("daily message generated")

	return message, nil
}

func (s *DailyMessageService) cacheKey() string {
	return dailyMessageKeyPrefix + s.now().Format("2006-01-02")
}
