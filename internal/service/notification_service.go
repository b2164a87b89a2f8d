package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/threadpost/threadpost-backend/internal/common"
	"github.com/threadpost/threadpost-backend/internal/domain"
	"github.com/threadpost/threadpost-backend/internal/repository"
	pkgcache "github.com/threadpost/threadpost-backend/pkg/cache"
)

// NotificationService handles the notification feed. Notifications are
// created by the dispatcher's after-create hook; this service owns the read
// side and the read-through back to source messages.
type NotificationService struct {
	db            *gorm.DB
	notifications repository.NotificationRepository
	messages      repository.MessageRepository
	cache         pkgcache.Service
}

// NewNotificationService creates a new NotificationService. cache may be
// nil when redis is unavailable.
func NewNotificationService(
	db *gorm.DB,
	notifications repository.NotificationRepository,
	messages repository.MessageRepository,
	cache pkgcache.Service,
) *NotificationService {
	return &NotificationService{
		db:            db,
		notifications: notifications,
		messages:      messages,
		cache:         cache,
	}
}

// GetUnread returns unread notifications for a user, newest first
func (s *NotificationService) GetUnread(userID string) ([]domain.NotificationItem, error) {
	notifications, err := s.notifications.FindUnread(userID)
	if err != nil {
		return nil, err
	}
	items := make([]domain.NotificationItem, len(notifications))
	for i, n := range notifications {
		items[i] = n.ToItem()
	}
	return items, nil
}

// GetSummary returns the unread notification count. The count is cached
// briefly; it is best-effort and may lag a just-created notification.
func (s *NotificationService) GetSummary(userID string) (*domain.NotificationSummaryResponse, error) {
	ctx := context.Background()

	if s.cache != nil {
		if count, err := s.cache.GetUnreadCount(ctx, userID); err == nil {
			return &domain.NotificationSummaryResponse{TotalUnread: count}, nil
		}
	}

	count, err := s.notifications.CountUnread(userID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetUnreadCount(ctx, userID, count)
	}
	return &domain.NotificationSummaryResponse{TotalUnread: count}, nil
}

// MarkAsRead marks a notification read after an ownership check, and marks
// its source message read in the same transaction. The read-through is a
// direct column update on the message, never a re-dispatched event, so the
// message/notification read-through pair cannot loop.
func (s *NotificationService) MarkAsRead(userID string, notificationID uint64) (*domain.NotificationItem, error) {
	n, err := s.findNotification(notificationID)
	if err != nil {
		return nil, err
	}
	if n.RecipientID != userID {
		return nil, fmt.Errorf("%w: notification %d", common.ErrForbidden, notificationID)
	}

	if !n.IsRead {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.notifications.WithTx(tx).MarkAsRead(n.ID); err != nil {
				return err
			}
			return s.messages.WithTx(tx).MarkAsRead(n.MessageID)
		})
		if err != nil {
			return nil, err
		}
		n.IsRead = true
		s.invalidateUnread(userID)
	}

	item := n.ToItem()
	return &item, nil
}

// MarkAllAsRead bulk-marks every unread notification of a user as read.
// Unlike MarkAsRead it does NOT mark the source messages read: the bulk
// path deliberately skips per-message read-through.
func (s *NotificationService) MarkAllAsRead(userID string) error {
	if err := s.notifications.MarkAllAsRead(userID); err != nil {
		return err
	}
	s.invalidateUnread(userID)
	return nil
}

func (s *NotificationService) findNotification(id uint64) (*domain.Notification, error) {
	n, err := s.notifications.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: notification %d", common.ErrNotFound, id)
		}
		return nil, err
	}
	return n, nil
}

func (s *NotificationService) invalidateUnread(userID string) {
	if s.cache != nil {
		_ = s.cache.InvalidateUnreadCount(context.Background(), userID)
	}
}
