package service

import (
	"context"
	"fmt"

	"github.com/secureops-systems/secureops/internal/logging"
	"github.com/secureops-systems/secureops/internal/models"
	"github.com/secureops-systems/secureops/internal/notify"
	"github.com/secureops-systems/secureops/internal/repository"
)

// NotificationService serves per-user notification feeds. The unread
// count is the hot path (polled by clients), so it reads through an
// optional Redis cache.
type NotificationService struct {
	repo   repository.Repository
	cache  *notify.UnreadCache
	logger *logging.Logger
}

func NewNotificationService(repo repository.Repository, cache *notify.UnreadCache, logger *logging.Logger) *NotificationService {
	if logger == nil {
		logger = logging.Default()
	}
	return &NotificationService{repo: repo, cache: cache, logger: logger}
}

// ListNotifications retrieves a user's notification feed, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, req *models.ListNotificationsRequest) ([]*models.Notification, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	return s.repo.ListNotifications(ctx, req)
}

// UnreadCount returns the number of unread notifications for a user.
// Cache failures fall back to the store; the count is never wrong, at
// worst it is uncached.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	if s.cache != nil {
		count, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.WarnContext(ctx, "unread count cache read failed",
				logging.UserID(userID), logging.Error(err))
		} else if ok {
			return count, nil
		}
	}

	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, count); err != nil {
			s.logger.WarnContext(ctx, "unread count cache write failed",
				logging.UserID(userID), logging.Error(err))
		}
	}

	return count, nil
}

// MarkRead marks one of the user's notifications as read. Marking an
// already-read notification is a no-op that preserves the original
// read timestamp.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkNotificationRead(ctx, id, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// MarkAllRead marks the user's notifications as read. With ids it is
// limited to that subset; without, it covers the whole feed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string, ids []string) error {
	if err := s.repo.MarkAllNotificationsRead(ctx, userID, ids); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// DeleteNotification removes one of the user's own notifications.
func (s *NotificationService) DeleteNotification(ctx context.Context, id, userID string) error {
	if err := s.repo.DeleteNotification(ctx, id, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *NotificationService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "unread count cache invalidation failed",
			logging.UserID(userID), logging.Error(err))
	}
}
