package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/feconecta/feconecta-api/internal/models"
)

// CommunityTotals are the headline counters for the admin dashboard.
type CommunityTotals struct {
	Profiles    int64 `json:"profiles"`
	Posts       int64 `json:"posts"`
	Comments    int64 `json:"comments"`
	Likes       int64 `json:"likes"`
	Communities int64 `json:"communities"`
	Plans       int64 `json:"plans"`
}

// DailyCount is the number of posts created on one calendar day.
type DailyCount struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// AnalyticsRepository aggregates read-only counts over the whole dataset.
type AnalyticsRepository interface {
	Totals(ctx context.Context) (CommunityTotals, error)
	RecentPosts(ctx context.Context, limit int) ([]models.Post, error)
	PostsSince(ctx context.Context, since time.Time) ([]models.Post, error)
	TopHashtags(ctx context.Context, limit int) ([]models.Hashtag, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository constructs an analytics repository.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) Totals(ctx context.Context) (CommunityTotals, error) {
	var totals CommunityTotals

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.Profile{}, &totals.Profiles},
		{&models.Post{}, &totals.Posts},
		{&models.Comment{}, &totals.Comments},
		{&models.Like{}, &totals.Likes},
		{&models.Community{}, &totals.Communities},
		{&models.StudyPlan{}, &totals.Plans},
	}

	for _, c := range counts {
		if err := r.db.WithContext(ctx).Model(c.model).Count(c.dest).Error; err != nil {
			return CommunityTotals{}, err
		}
	}

	return totals, nil
}

func (r *analyticsRepository) RecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = 20
	}

	var posts []models.Post
	err := r.db.WithContext(ctx).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *analyticsRepository) PostsSince(ctx context.Context, since time.Time) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at asc").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *analyticsRepository) TopHashtags(ctx context.Context, limit int) ([]models.Hashtag, error) {
	if limit <= 0 {
		limit = 10
	}

	var tags []models.Hashtag
	err := r.db.WithContext(ctx).
		Order("post_count desc, name asc").
		Limit(limit).
		Find(&tags).Error
	if err != nil {
		return nil, err
	}

	return tags, nil
}
