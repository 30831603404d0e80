package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/feconecta/feconecta-api/internal/models"
)

// HashtagRepository provides access to hashtags and their post associations.
type HashtagRepository interface {
	GetByName(ctx context.Context, name string) (models.Hashtag, error)
	Search(ctx context.Context, query string, limit int) ([]models.Hashtag, error)
	AttachToPost(ctx context.Context, postID uint, names []string) error
	PostIDs(ctx context.Context, hashtagID uint) ([]uint, error)
}

type hashtagRepository struct {
	db *gorm.DB
}

// NewHashtagRepository constructs a hashtag repository.
func NewHashtagRepository(db *gorm.DB) HashtagRepository {
	return &hashtagRepository{db: db}
}

func (r *hashtagRepository) GetByName(ctx context.Context, name string) (models.Hashtag, error) {
	var hashtag models.Hashtag
	err := r.db.WithContext(ctx).
		Where("name = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&hashtag).Error
	if err != nil {
		return models.Hashtag{}, err
	}

	return hashtag, nil
}

// Search matches case-insensitively and orders by descending popularity.
func (r *hashtagRepository) Search(ctx context.Context, query string, limit int) ([]models.Hashtag, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	var hashtags []models.Hashtag
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", pattern).
		Order("post_count desc").
		Limit(limit).
		Find(&hashtags).Error
	if err != nil {
		return nil, err
	}

	return hashtags, nil
}

// AttachToPost upserts the named hashtags, links them to the post and bumps
// each tag's post_count, all in one transaction.
func (r *hashtagRepository) AttachToPost(ctx context.Context, postID uint, names []string) error {
	if len(names) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}

			var hashtag models.Hashtag
			err := tx.Where("name = ?", name).First(&hashtag).Error
			switch {
			case err == nil:
			case errors.Is(err, gorm.ErrRecordNotFound):
				hashtag = models.Hashtag{Name: name}
				if err := tx.Create(&hashtag).Error; err != nil {
					return err
				}
			default:
				return err
			}

			link := models.PostHashtag{PostID: postID, HashtagID: hashtag.ID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}

			err = tx.Model(&models.Hashtag{}).
				Where("id = ?", hashtag.ID).
				Update("post_count", gorm.Expr("post_count + 1")).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *hashtagRepository) PostIDs(ctx context.Context, hashtagID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.PostHashtag{}).
		Where("hashtag_id = ?", hashtagID).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}
