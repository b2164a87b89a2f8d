package repository

import (
	"gorm.io/gorm"

	"github.com/threadpost/threadpost-backend/internal/domain"
)

// NotificationRepository notification data access
type NotificationRepository interface {
	WithTx(tx *gorm.DB) NotificationRepository
	Create(n *domain.Notification) error
	FindByID(id uint64) (*domain.Notification, error)
	FindUnread(recipientID string) ([]*domain.Notification, error)
	CountUnread(recipientID string) (int64, error)
	MarkAsRead(id uint64) error
	MarkAllAsRead(recipientID string) error
	MarkReadByMessage(messageID uint64) error
	DeleteByRecipient(recipientID string) error
	DeleteByMessageIDs(messageIDs []uint64) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// WithTx returns a NotificationRepository bound to the given transaction
func (r *notificationRepository) WithTx(tx *gorm.DB) NotificationRepository {
	return &notificationRepository{db: tx}
}

func (r *notificationRepository) Create(n *domain.Notification) error {
	return r.db.Create(n).Error
}

func (r *notificationRepository) FindByID(id uint64) (*domain.Notification, error) {
	var n domain.Notification
	if err := r.db.Where("id = ?", id).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) FindUnread(recipientID string) ([]*domain.Notification, error) {
	var notifications []*domain.Notification
	err := r.db.Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Order("created_at DESC, id DESC").
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) CountUnread(recipientID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkAsRead(id uint64) error {
	return r.db.Model(&domain.Notification{}).Where("id = ?", id).
		Update("is_read", true).Error
}

func (r *notificationRepository) MarkAllAsRead(recipientID string) error {
	return r.db.Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
}

// MarkReadByMessage marks every notification sourced from the message as
// read in one bulk update.
func (r *notificationRepository) MarkReadByMessage(messageID uint64) error {
	return r.db.Model(&domain.Notification{}).
		Where("message_id = ? AND is_read = ?", messageID, false).
		Update("is_read", true).Error
}

func (r *notificationRepository) DeleteByRecipient(recipientID string) error {
	return r.db.Where("recipient_id = ?", recipientID).Delete(&domain.Notification{}).Error
}

func (r *notificationRepository) DeleteByMessageIDs(messageIDs []uint64) error {
	if len(messageIDs) == 0 {
		return nil
	}
	return r.db.Where("message_id IN ?", messageIDs).Delete(&domain.Notification{}).Error
}
