package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/feconecta/feconecta-api/internal/models"
)

// NoteRepository provides access to personal study notes.
type NoteRepository interface {
	ListByAuthor(ctx context.Context, authorID uint) ([]models.Note, error)
	Create(ctx context.Context, note *models.Note) error
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id, authorID uint) error
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository constructs a note repository.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) ListByAuthor(ctx context.Context, authorID uint) ([]models.Note, error) {
	var notes []models.Note
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("updated_at desc").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}

	return notes, nil
}

func (r *noteRepository) Create(ctx context.Context, note *models.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *noteRepository) Update(ctx context.Context, note *models.Note) error {
	result := r.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("id = ? AND author_id = ?", note.ID, note.AuthorID).
		Updates(map[string]interface{}{
			"title":     note.Title,
			"content":   note.Content,
			"tags":      note.Tags,
			"private":   note.Private,
			"reference": note.Reference,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id, authorID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&models.Note{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
