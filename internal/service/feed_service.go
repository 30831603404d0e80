package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/feconecta/feconecta-api/internal/models"
	"github.com/feconecta/feconecta-api/internal/observability"
	"github.com/feconecta/feconecta-api/internal/realtime"
	"github.com/feconecta/feconecta-api/internal/repository"
	"github.com/feconecta/feconecta-api/internal/session"
)

// FeedItem is one projected feed entry: the post joined with the author and
// the session user's own like state.
type FeedItem struct {
	models.Post
	LikedByMe bool `json:"liked_by_me"`
}

// FeedService is the feed view-model: a reverse-chronological paginated
// slice of posts kept current via realtime push, with a single optimistic
// mutation policy (apply locally, roll back on remote failure, reconcile by
// patch).
type FeedService struct {
	posts    repository.PostRepository
	likes    repository.LikeRepository
	sessions *session.Manager
	broker   *realtime.Broker
	pageSize int
	logger   zerolog.Logger

	mu      sync.Mutex
	items   []FeedItem
	page    int
	hasMore bool
	loading bool
}

// NewFeedService constructs a feed view-model instance.
func NewFeedService(
	posts repository.PostRepository,
	likes repository.LikeRepository,
	sessions *session.Manager,
	broker *realtime.Broker,
	pageSize int,
	logger zerolog.Logger,
) *FeedService {
	if pageSize <= 0 {
		pageSize = 10
	}

	return &FeedService{
		posts:    posts,
		likes:    likes,
		sessions: sessions,
		broker:   broker,
		pageSize: pageSize,
		hasMore:  true,
		logger:   logger.With().Str("component", "feed").Logger(),
	}
}

// Load resets pagination and fetches the first page. Without an active
// session the feed is empty, not an error.
func (s *FeedService) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.mu.Unlock()

	defer s.clearLoading()

	if s.sessions.Current() == nil {
		s.mu.Lock()
		s.items = nil
		s.page = 0
		s.hasMore = false
		s.mu.Unlock()
		return nil
	}

	observability.FeedFetches().WithLabelValues("load").Inc()

	page, err := s.fetchPage(ctx, 0)
	if err != nil {
		return s.demoteAuthError(err)
	}

	s.mu.Lock()
	s.items = page
	s.page = 0
	s.hasMore = len(page) == s.pageSize
	s.mu.Unlock()

	return nil
}

// LoadMore appends the next page. It is a no-op while a fetch is in flight
// or when no further pages are known to exist; a short page marks the feed
// exhausted.
func (s *FeedService) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.loading || !s.hasMore {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	next := s.page + 1
	s.mu.Unlock()

	defer s.clearLoading()

	observability.FeedFetches().WithLabelValues("load_more").Inc()

	page, err := s.fetchPage(ctx, next)
	if err != nil {
		return s.demoteAuthError(err)
	}

	s.mu.Lock()
	s.items = append(s.items, page...)
	s.page = next
	s.hasMore = len(page) == s.pageSize
	s.mu.Unlock()

	return nil
}

// Refresh resets pagination to page zero and refetches, used after local
// post creation and on remote insert events.
func (s *FeedService) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

// Items returns a copy of the current feed slice.
func (s *FeedService) Items() []FeedItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]FeedItem, len(s.items))
	copy(items, s.items)
	return items
}

// HasMore reports whether further pages are known to exist.
func (s *FeedService) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// ToggleLike applies the optimistic flip locally, calls the remote toggle
// and rolls the item back if the call fails. The realtime patch carries the
// authoritative counter afterwards.
func (s *FeedService) ToggleLike(ctx context.Context, postService *PostService, postID uint) error {
	previous, ok := s.snapshotItem(postID)
	if !ok {
		_, _, err := postService.ToggleLike(ctx, postID)
		return err
	}

	optimistic := previous
	if previous.LikedByMe {
		optimistic.LikedByMe = false
		optimistic.LikesCount--
	} else {
		optimistic.LikedByMe = true
		optimistic.LikesCount++
	}
	s.replaceItem(optimistic)

	liked, post, err := postService.ToggleLike(ctx, postID)
	if err != nil {
		observability.OptimisticRollbacks().Inc()
		s.replaceItem(previous)
		return err
	}

	confirmed := optimistic
	confirmed.LikedByMe = liked
	confirmed.LikesCount = post.LikesCount
	s.replaceItem(confirmed)

	return nil
}

// Start subscribes the view-model to post change events and returns the
// teardown that stops reconciliation and releases the subscription.
func (s *FeedService) Start(ctx context.Context) func() {
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

// apply reconciles one change event. Inserts re-run Refresh (the
// simplest-correct policy: no incremental merge-insert, so ordering and
// duplication bugs cannot arise). Updates patch the mutable projected fields
// of the matching item in place; deletes remove it.
func (s *FeedService) apply(ctx context.Context, event realtime.Event) {
	switch event.Type {
	case realtime.EventInsert:
		if err := s.Refresh(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("feed refresh after insert failed")
		}
	case realtime.EventUpdate:
		var post models.Post
		if err := json.Unmarshal(event.Row, &post); err != nil {
			s.logger.Warn().Err(err).Msg("invalid post row in update event")
			return
		}
		s.patch(post)
	case realtime.EventDelete:
		var post models.Post
		if err := json.Unmarshal(event.Row, &post); err != nil {
			s.logger.Warn().Err(err).Msg("invalid post row in delete event")
			return
		}
		s.remove(post.ID)
	}
}

func (s *FeedService) patch(post models.Post) {
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

func (s *FeedService) remove(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

func (s *FeedService) fetchPage(ctx context.Context, page int) ([]FeedItem, error) {
	posts, err := s.posts.ListPage(ctx, page*s.pageSize, s.pageSize)
	if err != nil {
		return nil, err
	}

	return s.project(ctx, posts)
}

// project joins the page with the session user's like state.
func (s *FeedService) project(ctx context.Context, posts []models.Post) ([]FeedItem, error) {
	ids := make([]uint, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}

	liked := map[uint]bool{}
	if current := s.sessions.Current(); current != nil && len(ids) > 0 {
		var err error
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

func (s *FeedService) snapshotItem(postID uint) (FeedItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.ID == postID {
			return item, true
		}
	}

	return FeedItem{}, false
}

func (s *FeedService) replaceItem(item FeedItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i] = item
			return
		}
	}
}

func (s *FeedService) clearLoading() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

// demoteAuthError suppresses auth-flavoured failures from the user-facing
// notice path: they mean "not logged in yet", not a broken feed.
func (s *FeedService) demoteAuthError(err error) error {
	if err == nil {
		return nil
	}

	message := strings.ToLower(err.Error())
	if strings.Contains(message, "auth") || strings.Contains(message, "jwt") || strings.Contains(message, "session") {
		s.logger.Debug().Err(err).Msg("suppressed auth error during feed fetch")
		return nil
	}

	s.logger.Error().Err(err).Msg("feed fetch failed")
	return err
}
