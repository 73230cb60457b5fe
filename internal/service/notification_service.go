package service

import (
	"context"
	"strings"
	"time"

	"github.com/Freeeeeet/studio_manager/internal/events"
	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificationService struct {
	notifications NotificationStore
	profiles      ProfileStore
	events        events.Publisher
	logger        *zap.Logger
}

func NewNotificationService(notifications NotificationStore, profiles ProfileStore, publisher events.Publisher, logger *zap.Logger) *NotificationService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &NotificationService{
		notifications: notifications,
		profiles:      profiles,
		events:        publisher,
		logger:        logger,
	}
}

// List получает уведомления профиля
func (s *NotificationService) List(ctx context.Context, profileID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	list, err := s.notifications.ListByProfile(ctx, profileID, unreadOnly)
	if err != nil {
		return nil, storeError("list notifications", err)
	}
	return list, nil
}

// UnreadCount считает непрочитанные
func (s *NotificationService) UnreadCount(ctx context.Context, profileID uuid.UUID) (int, error) {
	count, err := s.notifications.CountUnread(ctx, profileID)
	if err != nil {
		return 0, storeError("count unread", err)
	}
	return count, nil
}

// Create отправляет уведомление одному профилю; доступно инструкторам и администраторам
func (s *NotificationService) Create(ctx context.Context, actorID, recipientID uuid.UUID, title, message, typeName string) (*model.Notification, error) {
	actor, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		return nil, storeError("get actor", err)
	}
	if actor == nil || actor.Role == nil || !actor.Role.IsStaff() {
		return nil, ErrForbidden
	}

	nType := model.NotificationType(strings.ToLower(strings.TrimSpace(typeName)))
	if nType == "" {
		nType = model.NotificationTypeCustom
	}
	if !nType.Valid() {
		return nil, validationError("unknown notification type %q", typeName)
	}

	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" || message == "" {
		return nil, validationError("title and message are required")
	}

	recipient, err := s.profiles.GetByID(ctx, recipientID)
	if err != nil {
		return nil, storeError("get recipient", err)
	}
	if recipient == nil {
		return nil, ErrNotFound
	}

	n := &model.Notification{
		ProfileID: recipient.ID,
		Title:     title,
		Message:   message,
		Type:      nType,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, storeError("create notification", err)
	}

	s.logger.Info("Notification created",
		zap.Int64("notification_id", n.ID),
		zap.String("actor_id", actorID.String()),
		zap.String("profile_id", recipientID.String()),
		zap.String("type", string(nType)),
	)

	if err := s.events.Publish(ctx, events.New(events.NotificationCreated, recipient.ID, n)); err != nil {
		s.logger.Warn("Failed to publish notification event",
			zap.String("profile_id", recipient.ID.String()),
			zap.Error(err),
		)
	}

	return n, nil
}

// MarkRead отмечает уведомление владельца прочитанным
func (s *NotificationService) MarkRead(ctx context.Context, profileID uuid.UUID, id int64) error {
	ok, err := s.notifications.MarkRead(ctx, profileID, id)
	if err != nil {
		return storeError("mark read", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead отмечает прочитанными все уведомления владельца
func (s *NotificationService) MarkAllRead(ctx context.Context, profileID uuid.UUID) (int64, error) {
	count, err := s.notifications.MarkAllRead(ctx, profileID)
	if err != nil {
		return 0, storeError("mark all read", err)
	}
	return count, nil
}

// Delete удаляет уведомление владельца
func (s *NotificationService) Delete(ctx context.Context, profileID uuid.UUID, id int64) error {
	ok, err := s.notifications.Delete(ctx, profileID, id)
	if err != nil {
		return storeError("delete notification", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// PurgeRead удаляет старые прочитанные уведомления (фоновая задача)
func (s *NotificationService) PurgeRead(ctx context.Context, olderThan time.Time) (int64, error) {
	count, err := s.notifications.PurgeRead(ctx, olderThan)
	if err != nil {
		return 0, storeError("purge read notifications", err)
	}
	return count, nil
}
