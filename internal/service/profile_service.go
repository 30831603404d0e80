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

// ProfileView is a profile joined with its computed counters.
type ProfileView struct {
	models.Profile
	Counters models.ProfileCounters `json:"counters"`
}

// ProfileUpdateRequest carries the owner-editable profile fields.
type ProfileUpdateRequest struct {
	FullName  string
	Bio       string
	Location  string
	Church    string
	Whatsapp  string
	Instagram string
	Facebook  string
	Twitter   string
	Youtube   string
	AvatarURL string
	CoverURL  string
}

// ProfileService resolves profile pages and owner updates.
type ProfileService struct {
	profiles  repository.ProfileRepository
	sessions  *session.Manager
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewProfileService constructs a profile service.
func NewProfileService(profiles repository.ProfileRepository, sessions *session.Manager, logger zerolog.Logger) *ProfileService {
	return &ProfileService{
		profiles:  profiles,
		sessions:  sessions,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "profile_service").Logger(),
	}
}

// GetByUsername resolves a profile page. A missing profile is ErrNotFound,
// an explicit state distinct from a transient failure.
func (s *ProfileService) GetByUsername(ctx context.Context, username string) (ProfileView, error) {
	profile, err := s.profiles.GetByUsername(ctx, username)
	if err != nil {
		return ProfileView{}, mapNotFound(err)
	}

	counters, err := s.profiles.Counters(ctx, profile.ID)
	if err != nil {
		return ProfileView{}, err
	}

	return ProfileView{Profile: profile, Counters: counters}, nil
}

// UpdateOwn mutates the session user's own profile. The bio keeps its
// 160-character bound.
func (s *ProfileService) UpdateOwn(ctx context.Context, req ProfileUpdateRequest) (models.Profile, error) {
	current := s.sessions.Current()
	if current == nil {
		return models.Profile{}, ErrNotLoggedIn
	}

	bio := strings.TrimSpace(s.sanitizer.Sanitize(req.Bio))
	if len([]rune(bio)) > 160 {
		return models.Profile{}, fmt.Errorf("bio must be at most 160 characters")
	}

	profile, err := s.profiles.GetByID(ctx, current.UserID)
	if err != nil {
		return models.Profile{}, mapNotFound(err)
	}

	if fullName := strings.TrimSpace(req.FullName); fullName != "" {
		profile.FullName = fullName
	}
	profile.Bio = bio
	profile.Location = strings.TrimSpace(req.Location)
	profile.Church = strings.TrimSpace(req.Church)
	profile.Whatsapp = strings.TrimSpace(req.Whatsapp)
	profile.Instagram = strings.TrimSpace(req.Instagram)
	profile.Facebook = strings.TrimSpace(req.Facebook)
	profile.Twitter = strings.TrimSpace(req.Twitter)
	profile.Youtube = strings.TrimSpace(req.Youtube)
	if req.AvatarURL != "" {
		profile.AvatarURL = req.AvatarURL
	}
	if req.CoverURL != "" {
		profile.CoverURL = req.CoverURL
	}

	if err := s.profiles.Update(ctx, &profile); err != nil {
		return models.Profile{}, fmt.Errorf("update profile: %w", err)
	}

	return profile, nil
}
