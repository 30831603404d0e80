package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/feconecta/feconecta-api/internal/models"
)

// PostRepository provides access to feed posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (models.Post, error)
	ListPage(ctx context.Context, offset, limit int) ([]models.Post, error)
	ListPageByIDs(ctx context.Context, ids []uint, offset, limit int) ([]models.Post, error)
	UpdateContent(ctx context.Context, id, authorID uint, content string) (models.Post, error)
	Delete(ctx context.Context, id, authorID uint) error
	AdjustCounter(ctx context.Context, id uint, column string, delta int) (models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository constructs a post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		return models.Post{}, err
	}

	return post, nil
}

// ListPage returns one reverse-chronological page joined with the author.
func (r *postRepository) ListPage(ctx context.Context, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	return posts, nil
}

// ListPageByIDs returns one page restricted to the given post id set, used
// by the hashtag feed.
func (r *postRepository) ListPageByIDs(ctx context.Context, ids []uint, offset, limit int) ([]models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id IN ?", ids).
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	return posts, nil
}

// UpdateContent patches the content of the author's own post and returns the
// stored row.
func (r *postRepository) UpdateContent(ctx context.Context, id, authorID uint, content string) (models.Post, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND author_id = ?", id, authorID).
		Update("content", content)
	if result.Error != nil {
		return models.Post{}, result.Error
	}

	if result.RowsAffected == 0 {
		return models.Post{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *postRepository) Delete(ctx context.Context, id, authorID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&models.Post{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// AdjustCounter applies a relative counter change atomically and returns the
// stored row. column must be one of the counter columns.
func (r *postRepository) AdjustCounter(ctx context.Context, id uint, column string, delta int) (models.Post, error) {
	switch column {
	case "likes_count", "comments_count", "shares_count":
	default:
		return models.Post{}, fmt.Errorf("not a counter column: %s", column)
	}

	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Update(column, gorm.Expr(column+" + ?", delta)).Error
	if err != nil {
		return models.Post{}, err
	}

	return r.GetByID(ctx, id)
}
