package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feconecta/feconecta-api/internal/models"
	"github.com/feconecta/feconecta-api/internal/realtime"
	"github.com/feconecta/feconecta-api/internal/repository"
)

func newFeed(f *fixture, pageSize int) *FeedService {
	return NewFeedService(f.posts, f.likes, f.sessions, f.broker, pageSize, testLogger())
}

func TestFeedLoadPaginatesNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	for i := 1; i <= 15; i++ {
		f.createPost(t, fmt.Sprintf("post numero %d", i))
	}

	feed := newFeed(f, 10)
	require.NoError(t, feed.Load(context.Background()))

	items := feed.Items()
	require.Len(t, items, 10)
	require.Equal(t, "post numero 15", items[0].Content)
	require.True(t, feed.HasMore())

	require.NoError(t, feed.LoadMore(context.Background()))
	items = feed.Items()
	require.Len(t, items, 15)
	require.Equal(t, "post numero 1", items[14].Content)
	require.False(t, feed.HasMore())

	// nothing left; LoadMore must be a no-op
	require.NoError(t, feed.LoadMore(context.Background()))
	require.Len(t, feed.Items(), 15)
}

func TestFeedLoadMoreNoOpWhileFetchInFlight(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	for i := 1; i <= 15; i++ {
		f.createPost(t, fmt.Sprintf("post numero %d", i))
	}

	feed := newFeed(f, 10)
	require.NoError(t, feed.Load(context.Background()))
	require.Len(t, feed.Items(), 10)

	// mark a fetch as in flight: the guard must swallow the call without
	// issuing a second fetch or touching pagination
	feed.mu.Lock()
	feed.loading = true
	feed.mu.Unlock()

	require.NoError(t, feed.LoadMore(context.Background()))
	require.Len(t, feed.Items(), 10)
	require.True(t, feed.HasMore())

	feed.mu.Lock()
	feed.loading = false
	feed.mu.Unlock()

	require.NoError(t, feed.LoadMore(context.Background()))
	require.Len(t, feed.Items(), 15)
}

func TestFeedEmptyWithoutSession(t *testing.T) {
	f := newFixture(t)

	feed := newFeed(f, 10)
	require.NoError(t, feed.Load(context.Background()))
	require.Empty(t, feed.Items())
	require.False(t, feed.HasMore())
}

func TestFeedEmptyResultIsNotAnError(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	feed := newFeed(f, 10)
	require.NoError(t, feed.Load(context.Background()))
	require.Empty(t, feed.Items())
	require.False(t, feed.HasMore())
}

func TestFeedUpdatePatchesWithoutReordering(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	first := f.createPost(t, "primeiro")
	second := f.createPost(t, "segundo")

	feed := newFeed(f, 10)
	require.NoError(t, feed.Load(context.Background()))

	items := feed.Items()
	require.Equal(t, second.ID, items[0].ID)
	require.Equal(t, first.ID, items[1].ID)

	patched := first
	patched.Content = "primeiro (editado)"
	patched.LikesCount = 7
	event, err := realtime.NewRowEvent(repository.TablePosts, realtime.EventUpdate, patched)
	require.NoError(t, err)

	feed.apply(context.Background(), event)

	items = feed.Items()
	require.Equal(t, second.ID, items[0].ID, "update must not reorder the feed")
	require.Equal(t, "primeiro (editado)", items[1].Content)
	require.Equal(t, int64(7), items[1].LikesCount)
}

func TestFeedDeleteRemovesItem(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	first := f.createPost(t, "primeiro")
	second := f.createPost(t, "segundo")

	feed := newFeed(f, 10)
	require.NoError(t, feed.Load(context.Background()))
	require.Len(t, feed.Items(), 2)

	event, err := realtime.NewRowEvent(repository.TablePosts, realtime.EventDelete, first)
	require.NoError(t, err)
	feed.apply(context.Background(), event)

	items := feed.Items()
	require.Len(t, items, 1)
	require.Equal(t, second.ID, items[0].ID)
}

func TestFeedInsertTriggersRefresh(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	f.createPost(t, "primeiro")

	feed := newFeed(f, 10)
	require.NoError(t, feed.Load(context.Background()))
	require.Len(t, feed.Items(), 1)

	created := f.createPost(t, "segundo")
	event, err := realtime.NewRowEvent(repository.TablePosts, realtime.EventInsert, created)
	require.NoError(t, err)
	feed.apply(context.Background(), event)

	items := feed.Items()
	require.Len(t, items, 2)
	require.Equal(t, created.ID, items[0].ID)
}

func TestFeedToggleLikeOptimisticConfirm(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	post := f.createPost(t, "curtam este post")

	feed := newFeed(f, 10)
	require.NoError(t, feed.Load(context.Background()))

	require.NoError(t, feed.ToggleLike(context.Background(), f.postService, post.ID))
	items := feed.Items()
	require.True(t, items[0].LikedByMe)
	require.Equal(t, int64(1), items[0].LikesCount)

	// second toggle returns the feed to the original state
	require.NoError(t, feed.ToggleLike(context.Background(), f.postService, post.ID))
	items = feed.Items()
	require.False(t, items[0].LikedByMe)
	require.Equal(t, int64(0), items[0].LikesCount)
}

func TestFeedToggleLikeRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	post := f.createPost(t, "post da maria")

	feed := newFeed(f, 10)
	require.NoError(t, feed.Load(context.Background()))

	// losing the session makes the remote toggle fail after the local flip
	f.sessions.SignOut()

	err := feed.ToggleLike(context.Background(), f.postService, post.ID)
	require.ErrorIs(t, err, ErrNotLoggedIn)

	items := feed.Items()
	require.False(t, items[0].LikedByMe, "optimistic flip must be rolled back")
	require.Equal(t, int64(0), items[0].LikesCount)

	var count int64
	require.NoError(t, f.db.Model(&models.Like{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestFeedStartTeardownStopsReconciliation(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	feed := newFeed(f, 10)
	require.NoError(t, feed.Load(context.Background()))

	teardown := feed.Start(context.Background())
	teardown()
	// a second call must not panic or block
	teardown()
}
