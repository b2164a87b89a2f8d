package repository

import (
	"gorm.io/gorm"

	"github.com/threadpost/threadpost-backend/internal/domain"
)

// HistoryRepository edit history data access. History rows are append-only:
// Create and delete-by-cascade are the only writes.
type HistoryRepository interface {
	WithTx(tx *gorm.DB) HistoryRepository
	Create(h *domain.MessageHistory) error
	FindByMessageID(messageID uint64) ([]*domain.MessageHistory, error)
	DeleteByMessageIDs(messageIDs []uint64) error
}

type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

// WithTx returns a HistoryRepository bound to the given transaction
func (r *historyRepository) WithTx(tx *gorm.DB) HistoryRepository {
	return &historyRepository{db: tx}
}

func (r *historyRepository) Create(h *domain.MessageHistory) error {
	return r.db.Create(h).Error
}

// FindByMessageID returns history entries most-recent-first. Each call runs
// a fresh query, so re-reading yields a consistent new snapshot.
func (r *historyRepository) FindByMessageID(messageID uint64) ([]*domain.MessageHistory, error) {
	var histories []*domain.MessageHistory
	err := r.db.Where("message_id = ?", messageID).
		Order("archived_at DESC, id DESC").
		Find(&histories).Error
	return histories, err
}

func (r *historyRepository) DeleteByMessageIDs(messageIDs []uint64) error {
	if len(messageIDs) == 0 {
		return nil
	}
	return r.db.Where("message_id IN ?", messageIDs).Delete(&domain.MessageHistory{}).Error
}
