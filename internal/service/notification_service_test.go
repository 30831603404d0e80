package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/feconecta/feconecta-api/internal/models"
)

func TestNotificationMarkReadAndUnreadCount(t *testing.T) {
	f := newFixture(t)
	author := f.signUp(t, "maria")
	post := f.createPost(t, "post da maria")

	f.signUp(t, "joao")
	_, _, err := f.postService.ToggleLike(context.Background(), post.ID)
	require.NoError(t, err)

	count, err := f.notifications.UnreadCount(context.Background(), author.UserID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	list, err := f.notifications.List(context.Background(), author.UserID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	read, err := f.notifications.MarkRead(context.Background(), list[0].ID, author.UserID)
	require.NoError(t, err)
	require.True(t, read.Read)

	count, err = f.notifications.UnreadCount(context.Background(), author.UserID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestNotificationMarkAllRead(t *testing.T) {
	f := newFixture(t)
	author := f.signUp(t, "maria")
	first := f.createPost(t, "primeiro")
	second := f.createPost(t, "segundo")

	f.signUp(t, "joao")
	_, _, err := f.postService.ToggleLike(context.Background(), first.ID)
	require.NoError(t, err)
	_, _, err = f.postService.ToggleLike(context.Background(), second.ID)
	require.NoError(t, err)

	require.NoError(t, f.notifications.MarkAllRead(context.Background(), author.UserID))

	count, err := f.notifications.UnreadCount(context.Background(), author.UserID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestNotificationSubscribeFiltersByUser(t *testing.T) {
	f := newFixture(t)
	author := f.signUp(t, "maria")
	post := f.createPost(t, "post da maria")

	stream, teardown := f.notifications.Subscribe(author.UserID)
	defer teardown()

	otherStream, otherTeardown := f.notifications.Subscribe(999)
	defer otherTeardown()

	f.signUp(t, "joao")
	_, _, err := f.postService.ToggleLike(context.Background(), post.ID)
	require.NoError(t, err)

	select {
	case notification := <-stream:
		require.Equal(t, author.UserID, notification.UserID)
		require.Equal(t, models.NotificationLike, notification.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a streamed notification")
	}

	select {
	case notification := <-otherStream:
		t.Fatalf("unexpected notification for another user: %+v", notification)
	case <-time.After(50 * time.Millisecond):
	}
}
