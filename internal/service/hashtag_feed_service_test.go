package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feconecta/feconecta-api/internal/realtime"
	"github.com/feconecta/feconecta-api/internal/repository"
)

func newHashtagFeed(f *fixture, tag string, pageSize int) *HashtagFeedService {
	return NewHashtagFeedService(f.posts, f.likes, f.hashtags, f.sessions, f.broker, tag, pageSize, testLogger())
}

func TestHashtagFeedScopesToTag(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	f.createPost(t, "sem tag nenhuma")
	tagged := f.createPost(t, "com a tag #fé")

	feed := newHashtagFeed(f, "fé", 10)
	require.NoError(t, feed.Load(context.Background()))

	items := feed.Items()
	require.Len(t, items, 1)
	require.Equal(t, tagged.ID, items[0].ID)
	require.False(t, feed.HasMore())
}

func TestHashtagFeedUnknownTagIsEmptyNotError(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	feed := newHashtagFeed(f, "inexistente", 10)
	require.NoError(t, feed.Load(context.Background()))
	require.Empty(t, feed.Items())
	require.False(t, feed.HasMore())
}

func TestHashtagFeedPaginates(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	for i := 1; i <= 7; i++ {
		f.createPost(t, fmt.Sprintf("post %d #louvor", i))
	}

	feed := newHashtagFeed(f, "louvor", 5)
	require.NoError(t, feed.Load(context.Background()))
	require.Len(t, feed.Items(), 5)
	require.True(t, feed.HasMore())

	require.NoError(t, feed.LoadMore(context.Background()))
	require.Len(t, feed.Items(), 7)
	require.False(t, feed.HasMore())
}

func TestHashtagFeedDeleteRemovesScopedPost(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	tagged := f.createPost(t, "com a tag #fé")

	feed := newHashtagFeed(f, "fé", 10)
	require.NoError(t, feed.Load(context.Background()))
	require.Len(t, feed.Items(), 1)

	event, err := realtime.NewRowEvent(repository.TablePosts, realtime.EventDelete, tagged)
	require.NoError(t, err)
	feed.apply(context.Background(), event)

	require.Empty(t, feed.Items())
}

func TestHashtagFeedUpdatePatchesInPlace(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	first := f.createPost(t, "primeiro #fé")
	second := f.createPost(t, "segundo #fé")

	feed := newHashtagFeed(f, "fé", 10)
	require.NoError(t, feed.Load(context.Background()))

	patched := first
	patched.Content = "primeiro #fé (editado)"
	patched.LikesCount = 3
	event, err := realtime.NewRowEvent(repository.TablePosts, realtime.EventUpdate, patched)
	require.NoError(t, err)
	feed.apply(context.Background(), event)

	items := feed.Items()
	require.Equal(t, second.ID, items[0].ID, "update must not reorder the scoped feed")
	require.Equal(t, "primeiro #fé (editado)", items[1].Content)
	require.Equal(t, int64(3), items[1].LikesCount)
}

func TestHashtagFeedInsertRefreshesOnlyForMatchingTag(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	f.createPost(t, "primeiro #fé")

	feed := newHashtagFeed(f, "fé", 10)
	require.NoError(t, feed.Load(context.Background()))
	require.Len(t, feed.Items(), 1)

	other := f.createPost(t, "assunto diferente #louvor")
	event, err := realtime.NewRowEvent(repository.TablePosts, realtime.EventInsert, other)
	require.NoError(t, err)
	feed.apply(context.Background(), event)
	require.Len(t, feed.Items(), 1, "unrelated insert must not enter the scoped feed")

	tagged := f.createPost(t, "novidade com #fé")
	event, err = realtime.NewRowEvent(repository.TablePosts, realtime.EventInsert, tagged)
	require.NoError(t, err)
	feed.apply(context.Background(), event)

	items := feed.Items()
	require.Len(t, items, 2)
	require.Equal(t, tagged.ID, items[0].ID)
}

func TestHashtagFeedStartTeardownStopsReconciliation(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	feed := newHashtagFeed(f, "fé", 10)
	require.NoError(t, feed.Load(context.Background()))

	teardown := feed.Start(context.Background())
	teardown()
	// a second call must not panic or block
	teardown()
}
