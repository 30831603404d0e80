package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/feconecta/feconecta-api/internal/models"
	"github.com/feconecta/feconecta-api/internal/repository"
	"github.com/feconecta/feconecta-api/internal/session"
)

// FollowService toggles follow edges and hands out per-target hooks.
type FollowService struct {
	follows       repository.FollowRepository
	notifications NotificationPublisher
	sessions      *session.Manager
	logger        zerolog.Logger
}

// NewFollowService constructs a follow service.
func NewFollowService(follows repository.FollowRepository, notifications NotificationPublisher, sessions *session.Manager, logger zerolog.Logger) *FollowService {
	return &FollowService{
		follows:       follows,
		notifications: notifications,
		sessions:      sessions,
		logger:        logger.With().Str("component", "follow_service").Logger(),
	}
}

// IsFollowing reports whether the session user follows the target.
func (s *FollowService) IsFollowing(ctx context.Context, targetID uint) (bool, error) {
	current := s.sessions.Current()
	if current == nil || current.UserID == targetID {
		return false, nil
	}

	return s.follows.Exists(ctx, current.UserID, targetID)
}

// Toggle inserts or deletes the edge and returns the resulting state. Self
// follows are rejected outright.
func (s *FollowService) Toggle(ctx context.Context, targetID uint) (bool, error) {
	current := s.sessions.Current()
	if current == nil {
		return false, ErrNotLoggedIn
	}

	if current.UserID == targetID {
		return false, fmt.Errorf("cannot follow yourself")
	}

	exists, err := s.follows.Exists(ctx, current.UserID, targetID)
	if err != nil {
		return false, err
	}

	if exists {
		if err := s.follows.Delete(ctx, current.UserID, targetID); err != nil {
			return true, err
		}
		return false, nil
	}

	follow := models.Follow{FollowerID: current.UserID, FollowingID: targetID}
	if err := s.follows.Create(ctx, &follow); err != nil {
		return false, err
	}

	s.notifications.Notify(ctx, models.Notification{
		UserID:  targetID,
		ActorID: current.UserID,
		Type:    models.NotificationFollow,
		Message: fmt.Sprintf("@%s começou a seguir você", current.Username),
	})

	return true, nil
}

// Hook returns the per-target follow view-model. When target equals the
// session user the hook short-circuits every operation.
func (s *FollowService) Hook(targetID uint) *FollowHook {
	return &FollowHook{service: s, targetID: targetID}
}

// FollowHook owns the local follow state for one target user. The boolean
// flips only after the remote call succeeds, never before.
type FollowHook struct {
	service  *FollowService
	targetID uint

	mu        sync.Mutex
	following bool
}

// Refresh checks whether the edge exists, the on-mount behaviour.
func (h *FollowHook) Refresh(ctx context.Context) error {
	if h.selfTarget() {
		return nil
	}

	following, err := h.service.IsFollowing(ctx, h.targetID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.following = following
	h.mu.Unlock()

	return nil
}

// Toggle flips the edge, updating local state only on success.
func (h *FollowHook) Toggle(ctx context.Context) error {
	if h.selfTarget() {
		return nil
	}

	following, err := h.service.Toggle(ctx, h.targetID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.following = following
	h.mu.Unlock()

	return nil
}

// Following reports the last confirmed follow state.
func (h *FollowHook) Following() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.following
}

func (h *FollowHook) selfTarget() bool {
	current := h.service.sessions.Current()
	return current == nil || current.UserID == h.targetID
}
