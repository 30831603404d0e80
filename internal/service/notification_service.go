package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/feconecta/feconecta-api/internal/models"
	"github.com/feconecta/feconecta-api/internal/observability"
	"github.com/feconecta/feconecta-api/internal/realtime"
	"github.com/feconecta/feconecta-api/internal/repository"
)

// NotificationPublisher is the narrow interface other services use to emit
// notifications in response to likes, comments, follows and mentions.
type NotificationPublisher interface {
	Notify(ctx context.Context, notification models.Notification)
}

// NotificationService stores notifications and streams them to the
// notification view.
type NotificationService struct {
	repo   repository.NotificationRepository
	broker *realtime.Broker
	logger zerolog.Logger
}

// NewNotificationService constructs a notification service.
func NewNotificationService(repo repository.NotificationRepository, broker *realtime.Broker, logger zerolog.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		broker: broker,
		logger: logger.With().Str("component", "notification_service").Logger(),
	}
}

// Notify stores the notification and publishes its change event. Failures
// are logged only: a missing notification must never fail the mutation that
// triggered it.
func (s *NotificationService) Notify(ctx context.Context, notification models.Notification) {
	if notification.UserID == notification.ActorID {
		return
	}

	if err := s.repo.Create(ctx, &notification); err != nil {
		s.logger.Warn().Err(err).Str("type", notification.Type).Msg("failed to store notification")
		return
	}

	observability.NotificationsCreated().WithLabelValues(notification.Type).Inc()

	event, err := realtime.NewRowEvent(repository.TableNotifications, realtime.EventInsert, notification)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode notification event")
		return
	}

	s.broker.Publish(ctx, event)
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// MarkRead marks one notification as consumed.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) (models.Notification, error) {
	notification, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return models.Notification{}, mapNotFound(err)
	}

	return notification, nil
}

// MarkAllRead marks every unread notification of the user as consumed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// UnreadCount returns the badge number for the notification view.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// Subscribe streams the user's incoming notifications. The returned teardown
// must be called when the owning view goes away.
func (s *NotificationService) Subscribe(userID uint) (<-chan models.Notification, func()) {
	events, cancel := s.broker.Subscribe(repository.TableNotifications)
	out := make(chan models.Notification, 16)

	go func() {
		defer close(out)
		for event := range events {
			if event.Type != realtime.EventInsert {
				continue
			}

			var notification models.Notification
			if err := json.Unmarshal(event.Row, &notification); err != nil {
				s.logger.Warn().Err(err).Msg("invalid notification row in change event")
				continue
			}

			if notification.UserID != userID {
				continue
			}

			select {
			case out <- notification:
			default:
			}
		}
	}()

	return out, cancel
}
