package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newProfiles(f *fixture) *ProfileService {
	return NewProfileService(f.profiles, f.sessions, testLogger())
}

func TestProfileGetByUsernameWithCounters(t *testing.T) {
	f := newFixture(t)
	target := f.signUp(t, "maria")
	f.createPost(t, "post da maria")

	f.signUp(t, "joao")
	follows := NewFollowService(f.follows, f.notifications, f.sessions, testLogger())
	_, err := follows.Toggle(context.Background(), target.UserID)
	require.NoError(t, err)

	profiles := newProfiles(f)
	view, err := profiles.GetByUsername(context.Background(), "maria")
	require.NoError(t, err)
	require.Equal(t, "maria", view.Username)
	require.Equal(t, int64(1), view.Counters.Posts)
	require.Equal(t, int64(1), view.Counters.Followers)
	require.Zero(t, view.Counters.Following)
}

func TestProfileGetByUsernameMissing(t *testing.T) {
	f := newFixture(t)

	profiles := newProfiles(f)
	_, err := profiles.GetByUsername(context.Background(), "fantasma")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestProfileUpdateOwnEnforcesBioLimit(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	profiles := newProfiles(f)
	_, err := profiles.UpdateOwn(context.Background(), ProfileUpdateRequest{
		Bio: strings.Repeat("é", 161),
	})
	require.Error(t, err)

	updated, err := profiles.UpdateOwn(context.Background(), ProfileUpdateRequest{
		Bio:      strings.Repeat("é", 160),
		Location: "São Paulo",
		Church:   "Igreja Batista Central",
	})
	require.NoError(t, err)
	require.Equal(t, "São Paulo", updated.Location)
	require.Len(t, []rune(updated.Bio), 160)
}

func TestProfileUpdateOwnStripsMarkup(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "maria")

	profiles := newProfiles(f)
	updated, err := profiles.UpdateOwn(context.Background(), ProfileUpdateRequest{
		Bio: `<img src=x onerror=alert(1)>serva de Deus`,
	})
	require.NoError(t, err)
	require.Equal(t, "serva de Deus", updated.Bio)
}
