package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/feconecta/feconecta-api/internal/models"
	"github.com/feconecta/feconecta-api/internal/repository"
	"github.com/feconecta/feconecta-api/internal/session"
)

// NoteService owns personal study notes; every operation is scoped to the
// session user.
type NoteService struct {
	notes     repository.NoteRepository
	sessions  *session.Manager
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewNoteService constructs a note service.
func NewNoteService(notes repository.NoteRepository, sessions *session.Manager, logger zerolog.Logger) *NoteService {
	return &NoteService{
		notes:     notes,
		sessions:  sessions,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "note_service").Logger(),
	}
}

// List returns the session user's notes, most recently edited first.
func (s *NoteService) List(ctx context.Context) ([]models.Note, error) {
	current := s.sessions.Current()
	if current == nil {
		return nil, nil
	}

	return s.notes.ListByAuthor(ctx, current.UserID)
}

// Create stores a note, optionally linked to a Bible verse reference.
func (s *NoteService) Create(ctx context.Context, title, content, reference string, tags []string, private bool) (models.Note, error) {
	current := s.sessions.Current()
	if current == nil {
		return models.Note{}, ErrNotLoggedIn
	}

	title = strings.TrimSpace(s.sanitizer.Sanitize(title))
	if title == "" {
		return models.Note{}, ErrEmptyContent
	}

	note := models.Note{
		AuthorID:  current.UserID,
		Title:     title,
		Content:   strings.TrimSpace(s.sanitizer.Sanitize(content)),
		Reference: strings.TrimSpace(reference),
		Private:   private,
	}
	if len(tags) > 0 {
		note.Tags = datatypes.NewJSONSlice(tags)
	}

	if err := s.notes.Create(ctx, &note); err != nil {
		return models.Note{}, fmt.Errorf("create note: %w", err)
	}

	return note, nil
}

// Update rewrites the session user's own note.
func (s *NoteService) Update(ctx context.Context, note models.Note) (models.Note, error) {
	current := s.sessions.Current()
	if current == nil {
		return models.Note{}, ErrNotLoggedIn
	}

	note.AuthorID = current.UserID
	note.Title = strings.TrimSpace(s.sanitizer.Sanitize(note.Title))
	note.Content = strings.TrimSpace(s.sanitizer.Sanitize(note.Content))
	if note.Title == "" {
		return models.Note{}, ErrEmptyContent
	}

	if err := s.notes.Update(ctx, &note); err != nil {
		return models.Note{}, mapNotFound(err)
	}

	return note, nil
}

// Delete removes the session user's own note.
func (s *NoteService) Delete(ctx context.Context, id uint) error {
	current := s.sessions.Current()
	if current == nil {
		return ErrNotLoggedIn
	}

	if err := s.notes.Delete(ctx, id, current.UserID); err != nil {
		return mapNotFound(err)
	}

	return nil
}
