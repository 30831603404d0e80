package shell

import (
	"sync"

	"github.com/feconecta/feconecta-api/internal/models"
)

// View identifies one top-level screen of the application.
type View string

// Top-level views.
const (
	ViewFeed          View = "feed"
	ViewSearch        View = "search"
	ViewNotifications View = "notifications"
	ViewProfile       View = "profile"
	ViewCommunity     View = "community"
	ViewPlans         View = "plans"
	ViewNotes         View = "notes"
	ViewSettings      View = "settings"
)

// PostDraft is a prefilled composer payload, typically a share of an
// existing post. It travels through the shell's single draft slot instead
// of an untyped event channel.
type PostDraft struct {
	Content          string
	ContentType      string
	MediaURLs        []string
	Style            models.PostStyle
	OriginalPostID   *uint
	OriginalAuthorID *uint
}

// Shell holds navigation state: the current view with an optional parameter
// (a username, a community ID) and a single pending post draft. Listeners
// are told about every navigation.
type Shell struct {
	mu        sync.Mutex
	view      View
	param     string
	draft     *PostDraft
	listeners map[int]func(View, string)
	nextID    int
}

// New constructs a shell opened on the feed.
func New() *Shell {
	return &Shell{
		view:      ViewFeed,
		listeners: map[int]func(View, string){},
	}
}

// Navigate switches the current view and notifies listeners.
func (s *Shell) Navigate(view View, param string) {
	s.mu.Lock()
	s.view = view
	s.param = param
	snapshot := make([]func(View, string), 0, len(s.listeners))
	for _, listener := range s.listeners {
		snapshot = append(snapshot, listener)
	}
	s.mu.Unlock()

	for _, listener := range snapshot {
		listener(view, param)
	}
}

// Current returns the active view and its parameter.
func (s *Shell) Current() (View, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.view, s.param
}

// OnNavigate registers a navigation listener and returns its teardown.
func (s *Shell) OnNavigate(listener func(View, string)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// SetDraft parks a composer draft. A second draft replaces the first.
func (s *Shell) SetDraft(draft PostDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = &draft
}

// TakeDraft removes and returns the pending draft. The second return is
// false when the slot is empty.
func (s *Shell) TakeDraft() (PostDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft == nil {
		return PostDraft{}, false
	}

	draft := *s.draft
	s.draft = nil
	return draft, true
}
