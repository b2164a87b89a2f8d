package domain

import "time"

// Notification is created when a message is delivered to its receiver.
// The unique index enforces at most one per (recipient, message) pair.
type Notification struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RecipientID string    `gorm:"column:recipient_id;type:varchar(64);index;uniqueIndex:idx_recipient_message" json:"recipient_id"`
	MessageID   uint64    `gorm:"column:message_id;index;uniqueIndex:idx_recipient_message" json:"message_id"`
	IsRead      bool      `gorm:"column:is_read;default:false" json:"is_read"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// NotificationSummaryResponse represents unread count response
type NotificationSummaryResponse struct {
	TotalUnread int64 `json:"total_unread"`
}

// NotificationItem represents a single notification in list responses
type NotificationItem struct {
	ID          uint64 `json:"id"`
	RecipientID string `json:"recipient_id"`
	MessageID   uint64 `json:"message_id"`
	IsRead      bool   `json:"is_read"`
	CreatedAt   string `json:"created_at"`
}

// ToItem converts Notification to NotificationItem
func (n *Notification) ToItem() NotificationItem {
	return NotificationItem{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		MessageID:   n.MessageID,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt.Format(time.RFC3339),
	}
}
