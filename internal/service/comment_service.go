package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/feconecta/feconecta-api/internal/models"
	"github.com/feconecta/feconecta-api/internal/realtime"
	"github.com/feconecta/feconecta-api/internal/repository"
	"github.com/feconecta/feconecta-api/internal/session"
)

// CommentService is the per-post comment hook: a flat, oldest-first list.
type CommentService struct {
	comments      repository.CommentRepository
	posts         repository.PostRepository
	profiles      repository.ProfileRepository
	notifications NotificationPublisher
	sessions      *session.Manager
	broker        *realtime.Broker
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
}

// NewCommentService constructs a comment service.
func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	profiles repository.ProfileRepository,
	notifications NotificationPublisher,
	sessions *session.Manager,
	broker *realtime.Broker,
	logger zerolog.Logger,
) *CommentService {
	return &CommentService{
		comments:      comments,
		posts:         posts,
		profiles:      profiles,
		notifications: notifications,
		sessions:      sessions,
		broker:        broker,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "comment_service").Logger(),
	}
}

// Fetch loads the post's comments oldest-first joined with the commenter.
func (s *CommentService) Fetch(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

// Add stores a comment, bumps the post counter and refetches the list. A
// leading @username is a reply convention only: the list stays flat.
func (s *CommentService) Add(ctx context.Context, postID uint, content string) ([]models.Comment, error) {
	current := s.sessions.Current()
	if current == nil {
		return nil, ErrNotLoggedIn
	}

	content = strings.TrimSpace(s.sanitizer.Sanitize(content))
	if content == "" {
		return nil, ErrEmptyContent
	}

	comment := models.Comment{
		PostID:   postID,
		AuthorID: current.UserID,
		Content:  content,
	}

	if err := s.comments.Create(ctx, &comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	post, err := s.posts.AdjustCounter(ctx, postID, "comments_count", 1)
	if err != nil {
		s.logger.Warn().Err(err).Uint("post_id", postID).Msg("failed to bump comment counter")
	} else {
		s.notifications.Notify(ctx, models.Notification{
			UserID:  post.AuthorID,
			ActorID: current.UserID,
			Type:    models.NotificationComment,
			Message: fmt.Sprintf("@%s comentou sua publicação", current.Username),
			PostID:  &post.ID,
		})
		s.notifyMentions(ctx, current, content, post.ID)
		s.publishPostUpdate(ctx, post)
	}

	return s.comments.ListByPost(ctx, postID)
}

// Delete removes the caller's own comment. The caller drops the item from
// its local list; no full refetch happens here.
func (s *CommentService) Delete(ctx context.Context, commentID uint) error {
	current := s.sessions.Current()
	if current == nil {
		return ErrNotLoggedIn
	}

	if err := s.comments.Delete(ctx, commentID, current.UserID); err != nil {
		return mapNotFound(err)
	}

	return nil
}

func (s *CommentService) notifyMentions(ctx context.Context, current *session.Session, content string, postID uint) {
	for _, username := range ExtractMentions(content) {
		profile, err := s.profiles.GetByUsername(ctx, username)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn().Err(err).Str("username", username).Msg("mention lookup failed")
			}
			continue
		}

		s.notifications.Notify(ctx, models.Notification{
			UserID:  profile.ID,
			ActorID: current.UserID,
			Type:    models.NotificationMention,
			Message: fmt.Sprintf("@%s mencionou você em um comentário", current.Username),
			PostID:  &postID,
		})
	}
}

func (s *CommentService) publishPostUpdate(ctx context.Context, post models.Post) {
	event, err := realtime.NewRowEvent(repository.TablePosts, realtime.EventUpdate, post)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode post update event")
		return
	}

	s.broker.Publish(ctx, event)
}
