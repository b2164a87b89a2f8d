package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/threadpost/threadpost-backend/internal/domain"
)

// MessageRepository message data access
type MessageRepository interface {
	WithTx(tx *gorm.DB) MessageRepository
	Create(msg *domain.Message) error
	FindByID(id uint64) (*domain.Message, error)
	FindByParentIDs(parentIDs []uint64) ([]*domain.Message, error)
	FindInbox(userID string, page, limit int) ([]*domain.Message, int64, error)
	FindSent(userID string, page, limit int) ([]*domain.Message, int64, error)
	FindUnread(userID string) ([]*domain.Message, error)
	FindConversationRoots(userID string, page, limit int) ([]*domain.Message, int64, error)
	UpdateContent(id uint64, version uint, content string, editedAt *time.Time, editedBy *string) (int64, error)
	MarkAsRead(id uint64) error
	IDsForUser(userID string) ([]uint64, error)
	DeleteByIDs(ids []uint64) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// WithTx returns a MessageRepository bound to the given transaction
func (r *messageRepository) WithTx(tx *gorm.DB) MessageRepository {
	return &messageRepository{db: tx}
}

func (r *messageRepository) Create(msg *domain.Message) error {
	return r.db.Create(msg).Error
}

func (r *messageRepository) FindByID(id uint64) (*domain.Message, error) {
	var msg domain.Message
	if err := r.db.Where("id = ?", id).First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindByParentIDs fetches one reply level in a single batch query,
// ordered by creation time so callers can group children in order.
func (r *messageRepository) FindByParentIDs(parentIDs []uint64) ([]*domain.Message, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var messages []*domain.Message
	err := r.db.Where("parent_id IN ?", parentIDs).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

func (r *messageRepository) FindInbox(userID string, page, limit int) ([]*domain.Message, int64, error) {
	return r.findPaged(r.db.Model(&domain.Message{}).Where("receiver_id = ?", userID), page, limit)
}

func (r *messageRepository) FindSent(userID string, page, limit int) ([]*domain.Message, int64, error) {
	return r.findPaged(r.db.Model(&domain.Message{}).Where("sender_id = ?", userID), page, limit)
}

func (r *messageRepository) FindUnread(userID string) ([]*domain.Message, error) {
	var messages []*domain.Message
	err := r.db.Where("receiver_id = ? AND is_read = ?", userID, false).
		Order("id DESC").
		Find(&messages).Error
	return messages, err
}

// FindConversationRoots lists thread roots the user participates in,
// newest first.
func (r *messageRepository) FindConversationRoots(userID string, page, limit int) ([]*domain.Message, int64, error) {
	query := r.db.Model(&domain.Message{}).
		Where("parent_id IS NULL AND (sender_id = ? OR receiver_id = ?)", userID, userID)
	return r.findPaged(query, page, limit)
}

func (r *messageRepository) findPaged(query *gorm.DB, page, limit int) ([]*domain.Message, int64, error) {
	var messages []*domain.Message
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&messages).Error; err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// UpdateContent commits an edit with an optimistic-concurrency check: the
// row is only updated when its version still matches the one the editor
// read. Returns the number of rows affected; zero means a stale edit.
func (r *messageRepository) UpdateContent(id uint64, version uint, content string, editedAt *time.Time, editedBy *string) (int64, error) {
	res := r.db.Model(&domain.Message{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"content":   content,
			"edited_at": editedAt,
			"edited_by": editedBy,
			"version":   gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}

func (r *messageRepository) MarkAsRead(id uint64) error {
	return r.db.Model(&domain.Message{}).Where("id = ?", id).
		Update("is_read", true).Error
}

// IDsForUser returns ids of every message where the user is sender or
// receiver, for cascade deletion.
func (r *messageRepository) IDsForUser(userID string) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&domain.Message{}).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *messageRepository) DeleteByIDs(ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("id IN ?", ids).Delete(&domain.Message{}).Error
}
