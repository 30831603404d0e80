package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/feconecta/feconecta-api/internal/models"
	"github.com/feconecta/feconecta-api/internal/realtime"
	"github.com/feconecta/feconecta-api/internal/repository"
	"github.com/feconecta/feconecta-api/internal/session"
)

// CreatePostRequest carries a composed post. ContentType must be one of the
// recognised types; there is no lossy "media" catch-all.
type CreatePostRequest struct {
	Content          string           `validate:"max=5000"`
	ContentType      string           `validate:"required"`
	MediaURLs        []string         `validate:"max=10,dive,url"`
	Style            models.PostStyle `validate:"-"`
	OriginalPostID   *uint            `validate:"-"`
	OriginalAuthorID *uint            `validate:"-"`
}

// PostService owns post CRUD and the like toggle. All user text passes
// through a strict sanitizer before storage; styled posts carry only the
// structured style descriptor, never markup.
type PostService struct {
	posts         repository.PostRepository
	likes         repository.LikeRepository
	hashtags      repository.HashtagRepository
	profiles      repository.ProfileRepository
	notifications NotificationPublisher
	sessions      *session.Manager
	broker        *realtime.Broker
	validate      *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewPostService constructs a post service.
func NewPostService(
	posts repository.PostRepository,
	likes repository.LikeRepository,
	hashtags repository.HashtagRepository,
	profiles repository.ProfileRepository,
	notifications NotificationPublisher,
	sessions *session.Manager,
	broker *realtime.Broker,
	validate *validator.Validate,
	logger zerolog.Logger,
) *PostService {
	return &PostService{
		posts:         posts,
		likes:         likes,
		hashtags:      hashtags,
		profiles:      profiles,
		notifications: notifications,
		sessions:      sessions,
		broker:        broker,
		validate:      validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "post_service").Logger(),
		tracer:        otel.Tracer("github.com/feconecta/feconecta-api/internal/service/post"),
	}
}

// Create stores a new post, extracts its hashtags and notifies mentions.
// Server-computed fields (id, timestamps, counters) are authoritative: the
// feed refreshes instead of prepending locally.
func (s *PostService) Create(ctx context.Context, req CreatePostRequest) (models.Post, error) {
	current := s.sessions.Current()
	if current == nil {
		return models.Post{}, ErrNotLoggedIn
	}

	if err := s.validate.Struct(req); err != nil {
		return models.Post{}, err
	}

	if !models.ValidContentType(req.ContentType) {
		return models.Post{}, fmt.Errorf("%w: %q", ErrInvalidContentType, req.ContentType)
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if content == "" && len(req.MediaURLs) == 0 {
		return models.Post{}, ErrEmptyContent
	}

	ctx, span := s.tracer.Start(ctx, "post.create", trace.WithAttributes(
		attribute.String("post.content_type", req.ContentType),
	))
	defer span.End()

	post := models.Post{
		AuthorID:         current.UserID,
		Content:          content,
		ContentType:      req.ContentType,
		OriginalPostID:   req.OriginalPostID,
		OriginalAuthorID: req.OriginalAuthorID,
	}

	if len(req.MediaURLs) > 0 {
		post.MediaURLs = datatypes.NewJSONSlice(req.MediaURLs)
	}

	// Style is meaningful only for text posts.
	if req.ContentType == models.ContentTypeText {
		post.Style = datatypes.NewJSONType(req.Style)
	}

	if err := s.posts.Create(ctx, &post); err != nil {
		span.RecordError(err)
		return models.Post{}, fmt.Errorf("create post: %w", err)
	}

	if tags := ExtractHashtags(content); len(tags) > 0 {
		if err := s.hashtags.AttachToPost(ctx, post.ID, tags); err != nil {
			s.logger.Warn().Err(err).Uint("post_id", post.ID).Msg("failed to attach hashtags")
		}
	}

	s.notifyMentions(ctx, current, content, post.ID)
	s.publish(ctx, realtime.EventInsert, post)

	s.logger.Info().Uint("post_id", post.ID).Str("type", post.ContentType).Msg("post created")

	return post, nil
}

// Update patches the content of the caller's own post.
func (s *PostService) Update(ctx context.Context, id uint, content string) (models.Post, error) {
	current := s.sessions.Current()
	if current == nil {
		return models.Post{}, ErrNotLoggedIn
	}

	content = strings.TrimSpace(s.sanitizer.Sanitize(content))
	if content == "" {
		return models.Post{}, ErrEmptyContent
	}

	post, err := s.posts.UpdateContent(ctx, id, current.UserID, content)
	if err != nil {
		return models.Post{}, mapNotFound(err)
	}

	s.publish(ctx, realtime.EventUpdate, post)

	return post, nil
}

// Delete removes the caller's own post.
func (s *PostService) Delete(ctx context.Context, id uint) error {
	current := s.sessions.Current()
	if current == nil {
		return ErrNotLoggedIn
	}

	if err := s.posts.Delete(ctx, id, current.UserID); err != nil {
		return mapNotFound(err)
	}

	s.publish(ctx, realtime.EventDelete, models.Post{ID: id})

	return nil
}

// ToggleLike flips the caller's like on the post: calling it twice returns
// the stored state to its original value. The returned post carries the
// authoritative counter.
func (s *PostService) ToggleLike(ctx context.Context, postID uint) (bool, models.Post, error) {
	current := s.sessions.Current()
	if current == nil {
		return false, models.Post{}, ErrNotLoggedIn
	}

	ctx, span := s.tracer.Start(ctx, "post.toggle_like", trace.WithAttributes(
		attribute.Int64("post.id", int64(postID)),
	))
	defer span.End()

	exists, err := s.likes.Exists(ctx, postID, current.UserID)
	if err != nil {
		span.RecordError(err)
		return false, models.Post{}, err
	}

	var liked bool
	var delta int
	if exists {
		if err := s.likes.Delete(ctx, postID, current.UserID); err != nil {
			span.RecordError(err)
			return false, models.Post{}, err
		}
		liked, delta = false, -1
	} else {
		like := models.Like{PostID: postID, UserID: current.UserID}
		if err := s.likes.Create(ctx, &like); err != nil {
			span.RecordError(err)
			return false, models.Post{}, err
		}
		liked, delta = true, 1
	}

	post, err := s.posts.AdjustCounter(ctx, postID, "likes_count", delta)
	if err != nil {
		span.RecordError(err)
		return liked, models.Post{}, err
	}

	if liked {
		s.notifications.Notify(ctx, models.Notification{
			UserID:  post.AuthorID,
			ActorID: current.UserID,
			Type:    models.NotificationLike,
			Message: fmt.Sprintf("@%s curtiu sua publicação", current.Username),
			PostID:  &post.ID,
		})
	}

	s.publish(ctx, realtime.EventUpdate, post)

	return liked, post, nil
}

func (s *PostService) notifyMentions(ctx context.Context, current *session.Session, content string, postID uint) {
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
			Message: fmt.Sprintf("@%s mencionou você em uma publicação", current.Username),
			PostID:  &postID,
		})
	}
}

func (s *PostService) publish(ctx context.Context, kind realtime.EventType, post models.Post) {
	event, err := realtime.NewRowEvent(repository.TablePosts, kind, post)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode post event")
		return
	}

	s.broker.Publish(ctx, event)
}
