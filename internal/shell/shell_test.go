package shell

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feconecta/feconecta-api/internal/models"
)

func TestShellOpensOnFeed(t *testing.T) {
	s := New()

	view, param := s.Current()
	require.Equal(t, ViewFeed, view)
	require.Empty(t, param)
}

func TestShellNavigateNotifiesListeners(t *testing.T) {
	s := New()

	var views []View
	var params []string
	teardown := s.OnNavigate(func(view View, param string) {
		views = append(views, view)
		params = append(params, param)
	})

	s.Navigate(ViewProfile, "maria")
	s.Navigate(ViewCommunity, "42")

	require.Equal(t, []View{ViewProfile, ViewCommunity}, views)
	require.Equal(t, []string{"maria", "42"}, params)

	teardown()
	teardown() // second call is a no-op
	s.Navigate(ViewFeed, "")
	require.Len(t, views, 2)
}

func TestShellDraftSlotHoldsOneDraft(t *testing.T) {
	s := New()

	_, ok := s.TakeDraft()
	require.False(t, ok)

	s.SetDraft(PostDraft{Content: "primeiro rascunho"})
	s.SetDraft(PostDraft{
		Content:     "compartilhando",
		ContentType: models.ContentTypeText,
		Style:       models.PostStyle{Background: "gradient-2"},
	})

	draft, ok := s.TakeDraft()
	require.True(t, ok)
	require.Equal(t, "compartilhando", draft.Content, "a newer draft replaces the pending one")

	// the slot empties on take
	_, ok = s.TakeDraft()
	require.False(t, ok)
}
