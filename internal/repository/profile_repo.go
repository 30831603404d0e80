package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/feconecta/feconecta-api/internal/models"
)

// ProfileRepository provides access to member profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uint) (models.Profile, error)
	GetByUsername(ctx context.Context, username string) (models.Profile, error)
	GetByEmail(ctx context.Context, email string) (models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	Counters(ctx context.Context, id uint) (models.ProfileCounters, error)
	Search(ctx context.Context, query string, limit int) ([]models.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository constructs a profile repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepository) GetByID(ctx context.Context, id uint) (models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		return models.Profile{}, err
	}

	return profile, nil
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&profile).Error
	if err != nil {
		return models.Profile{}, err
	}

	return profile, nil
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&profile).Error
	if err != nil {
		return models.Profile{}, err
	}

	return profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// Counters computes the denormalised profile numbers with count queries
// instead of stored columns, so they can never drift.
func (r *profileRepository) Counters(ctx context.Context, id uint) (models.ProfileCounters, error) {
	var counters models.ProfileCounters

	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", id).Count(&counters.Posts).Error; err != nil {
		return models.ProfileCounters{}, err
	}

	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("following_id = ?", id).Count(&counters.Followers).Error; err != nil {
		return models.ProfileCounters{}, err
	}

	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", id).Count(&counters.Following).Error; err != nil {
		return models.ProfileCounters{}, err
	}

	return counters, nil
}

// Search matches the query case-insensitively against username or full name.
func (r *profileRepository) Search(ctx context.Context, query string, limit int) ([]models.Profile, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	var profiles []models.Profile
	err := r.db.WithContext(ctx).
		Where("LOWER(username) LIKE ? OR LOWER(full_name) LIKE ?", pattern, pattern).
		Order("username asc").
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}

	return profiles, nil
}
