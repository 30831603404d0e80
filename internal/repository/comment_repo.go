package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/feconecta/feconecta-api/internal/models"
)

// CommentRepository provides access to post comments.
type CommentRepository interface {
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id, authorID uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository constructs a comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// ListByPost returns the flat comment list oldest-first with author joined.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at asc, id asc").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	return comments, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) Delete(ctx context.Context, id, authorID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&models.Comment{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
