package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/feconecta/feconecta-api/internal/models"
	"github.com/feconecta/feconecta-api/internal/repository"
	"github.com/feconecta/feconecta-api/internal/session"
)

// CommunityView is a community joined with the session user's membership.
type CommunityView struct {
	models.Community
	Member bool `json:"member"`
}

// EventView is an event joined with the session user's RSVP flag.
type EventView struct {
	models.Event
	Going bool `json:"going"`
}

// CommunityService owns communities, membership toggles and event RSVPs.
type CommunityService struct {
	communities repository.CommunityRepository
	sessions    *session.Manager
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewCommunityService constructs a community service.
func NewCommunityService(communities repository.CommunityRepository, sessions *session.Manager, logger zerolog.Logger) *CommunityService {
	return &CommunityService{
		communities: communities,
		sessions:    sessions,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "community_service").Logger(),
	}
}

// Create stores a community; the creator becomes its admin and first member.
func (s *CommunityService) Create(ctx context.Context, name, description string) (models.Community, error) {
	current := s.sessions.Current()
	if current == nil {
		return models.Community{}, ErrNotLoggedIn
	}

	name = strings.TrimSpace(s.sanitizer.Sanitize(name))
	if name == "" {
		return models.Community{}, ErrEmptyContent
	}

	community := models.Community{
		Name:        name,
		Description: strings.TrimSpace(s.sanitizer.Sanitize(description)),
		AdminID:     current.UserID,
	}

	if err := s.communities.Create(ctx, &community); err != nil {
		return models.Community{}, fmt.Errorf("create community: %w", err)
	}

	s.logger.Info().Uint("community_id", community.ID).Msg("community created")

	return community, nil
}

// Get resolves one community with the session user's membership flag.
func (s *CommunityService) Get(ctx context.Context, id uint) (CommunityView, error) {
	community, err := s.communities.GetByID(ctx, id)
	if err != nil {
		return CommunityView{}, mapNotFound(err)
	}

	view := CommunityView{Community: community}
	if current := s.sessions.Current(); current != nil {
		member, err := s.communities.MemberExists(ctx, id, current.UserID)
		if err != nil {
			return CommunityView{}, err
		}
		view.Member = member
	}

	return view, nil
}

// List returns communities, promoted and largest first.
func (s *CommunityService) List(ctx context.Context, limit, offset int) ([]models.Community, error) {
	return s.communities.List(ctx, limit, offset)
}

// ToggleMembership joins or leaves the community and returns the resulting
// membership state.
func (s *CommunityService) ToggleMembership(ctx context.Context, communityID uint) (bool, error) {
	current := s.sessions.Current()
	if current == nil {
		return false, ErrNotLoggedIn
	}

	member, err := s.communities.MemberExists(ctx, communityID, current.UserID)
	if err != nil {
		return false, err
	}

	if member {
		if err := s.communities.RemoveMember(ctx, communityID, current.UserID); err != nil {
			return true, err
		}
		return false, nil
	}

	if err := s.communities.AddMember(ctx, communityID, current.UserID); err != nil {
		return false, err
	}

	return true, nil
}

// CreateEvent adds a dated gathering; only the community admin may do so.
func (s *CommunityService) CreateEvent(ctx context.Context, event models.Event) (models.Event, error) {
	current := s.sessions.Current()
	if current == nil {
		return models.Event{}, ErrNotLoggedIn
	}

	community, err := s.communities.GetByID(ctx, event.CommunityID)
	if err != nil {
		return models.Event{}, mapNotFound(err)
	}

	if community.AdminID != current.UserID {
		return models.Event{}, fmt.Errorf("only the community admin can create events")
	}

	event.Title = strings.TrimSpace(s.sanitizer.Sanitize(event.Title))
	if event.Title == "" {
		return models.Event{}, ErrEmptyContent
	}
	event.Description = strings.TrimSpace(s.sanitizer.Sanitize(event.Description))

	if err := s.communities.CreateEvent(ctx, &event); err != nil {
		return models.Event{}, fmt.Errorf("create event: %w", err)
	}

	return event, nil
}

// ToggleRSVP flips the session user's attendance for the event.
func (s *CommunityService) ToggleRSVP(ctx context.Context, eventID uint) (bool, error) {
	current := s.sessions.Current()
	if current == nil {
		return false, ErrNotLoggedIn
	}

	going, err := s.communities.RSVPExists(ctx, eventID, current.UserID)
	if err != nil {
		return false, err
	}

	if going {
		if err := s.communities.RemoveRSVP(ctx, eventID, current.UserID); err != nil {
			return true, err
		}
		return false, nil
	}

	if err := s.communities.AddRSVP(ctx, eventID, current.UserID); err != nil {
		return false, err
	}

	return true, nil
}
