package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/feconecta/feconecta-api/internal/models"
	"github.com/feconecta/feconecta-api/internal/observability"
	"github.com/feconecta/feconecta-api/internal/realtime"
	"github.com/feconecta/feconecta-api/internal/repository"
	"github.com/feconecta/feconecta-api/internal/session"
)

// HashtagFeedService is the feed view-model scoped to one hashtag, resolved
// through a two-step lookup: name to id, then the association's post id set.
// An unknown tag yields an empty, immediately exhausted feed. Realtime
// reconciliation follows the main feed, restricted to the scoped set.
type HashtagFeedService struct {
	posts    repository.PostRepository
	likes    repository.LikeRepository
	hashtags repository.HashtagRepository
	sessions *session.Manager
	broker   *realtime.Broker
	pageSize int
	logger   zerolog.Logger

	mu      sync.Mutex
	tag     string
	postIDs []uint
	items   []FeedItem
	page    int
	hasMore bool
	loading bool
}

// NewHashtagFeedService constructs a hashtag feed view-model.
func NewHashtagFeedService(
	posts repository.PostRepository,
	likes repository.LikeRepository,
	hashtags repository.HashtagRepository,
	sessions *session.Manager,
	broker *realtime.Broker,
	tag string,
	pageSize int,
	logger zerolog.Logger,
) *HashtagFeedService {
	if pageSize <= 0 {
		pageSize = 10
	}

	tag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))

	return &HashtagFeedService{
		posts:    posts,
		likes:    likes,
		hashtags: hashtags,
		sessions: sessions,
		broker:   broker,
		pageSize: pageSize,
		tag:      tag,
		logger:   logger.With().Str("component", "hashtag_feed").Str("tag", tag).Logger(),
	}
}

// Load resolves the tag and fetches the first scoped page.
func (s *HashtagFeedService) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	tag := s.tag
	s.mu.Unlock()

	defer s.clearLoading()

	observability.FeedFetches().WithLabelValues("hashtag").Inc()

	hashtag, err := s.hashtags.GetByName(ctx, tag)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.mu.Lock()
			s.items = nil
			s.postIDs = nil
			s.page = 0
			s.hasMore = false
			s.mu.Unlock()
			return nil
		}
		return err
	}

	postIDs, err := s.hashtags.PostIDs(ctx, hashtag.ID)
	if err != nil {
		return err
	}

	page, err := s.fetchPage(ctx, postIDs, 0)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.postIDs = postIDs
	s.items = page
	s.page = 0
	s.hasMore = len(page) == s.pageSize
	s.mu.Unlock()

	return nil
}

// LoadMore appends the next scoped page with the same reentrancy guard as
// the main feed.
func (s *HashtagFeedService) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.loading || !s.hasMore {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	next := s.page + 1
	postIDs := s.postIDs
	s.mu.Unlock()

	defer s.clearLoading()

	page, err := s.fetchPage(ctx, postIDs, next)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = append(s.items, page...)
	s.page = next
	s.hasMore = len(page) == s.pageSize
	s.mu.Unlock()

	return nil
}

// Items returns a copy of the current scoped feed slice.
func (s *HashtagFeedService) Items() []FeedItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]FeedItem, len(s.items))
	copy(items, s.items)
	return items
}

// HasMore reports whether further pages are known to exist.
func (s *HashtagFeedService) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// Start subscribes the view-model to post change events and returns the
// teardown that stops reconciliation and releases the subscription.
func (s *HashtagFeedService) Start(ctx context.Context) func() {
	events, cancel := s.broker.Subscribe(repository.TablePosts)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for event := range events {
			s.apply(ctx, event)
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// apply reconciles one change event against the scoped set. Inserts re-run
// Load, which re-resolves the association, but only when the new post's
// content carries the tag; updates patch the matching item in place; deletes
// drop the post from both the items and the id set.
func (s *HashtagFeedService) apply(ctx context.Context, event realtime.Event) {
	var post models.Post
	if err := json.Unmarshal(event.Row, &post); err != nil {
		s.logger.Warn().Err(err).Msg("invalid post row in change event")
		return
	}

	switch event.Type {
	case realtime.EventInsert:
		if !s.carriesTag(post.Content) {
			return
		}
		if err := s.Load(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("hashtag feed refresh after insert failed")
		}
	case realtime.EventUpdate:
		s.patch(post)
	case realtime.EventDelete:
		s.remove(post.ID)
	}
}

func (s *HashtagFeedService) carriesTag(content string) bool {
	for _, tag := range ExtractHashtags(content) {
		if tag == s.tag {
			return true
		}
	}
	return false
}

func (s *HashtagFeedService) patch(post models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != post.ID {
			continue
		}
		s.items[i].Content = post.Content
		s.items[i].LikesCount = post.LikesCount
		s.items[i].CommentsCount = post.CommentsCount
		s.items[i].SharesCount = post.SharesCount
		return
	}
}

func (s *HashtagFeedService) remove(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}

	for i := range s.postIDs {
		if s.postIDs[i] == id {
			s.postIDs = append(s.postIDs[:i], s.postIDs[i+1:]...)
			return
		}
	}
}

func (s *HashtagFeedService) fetchPage(ctx context.Context, postIDs []uint, page int) ([]FeedItem, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}

	posts, err := s.posts.ListPageByIDs(ctx, postIDs, page*s.pageSize, s.pageSize)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}

	liked := map[uint]bool{}
	if current := s.sessions.Current(); current != nil && len(ids) > 0 {
		liked, err = s.likes.LikedPostIDs(ctx, current.UserID, ids)
		if err != nil {
			return nil, err
		}
	}

	items := make([]FeedItem, 0, len(posts))
	for _, post := range posts {
		items = append(items, FeedItem{Post: post, LikedByMe: liked[post.ID]})
	}

	return items, nil
}

func (s *HashtagFeedService) clearLoading() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}
