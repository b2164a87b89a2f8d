package domain

import "time"

// Message represents a direct message. A message may reply to another
// message via ParentID; a nil ParentID marks a thread root.
type Message struct {
	ID         uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SenderID   string     `gorm:"column:sender_id;type:varchar(64);index" json:"sender_id"`
	ReceiverID string     `gorm:"column:receiver_id;type:varchar(64);index" json:"receiver_id"`
	Content    string     `gorm:"column:content;type:text" json:"content"`
	ParentID   *uint64    `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	IsRead     bool       `gorm:"column:is_read;default:false" json:"is_read"`
	EditedAt   *time.Time `gorm:"column:edited_at" json:"edited_at,omitempty"`
	EditedBy   *string    `gorm:"column:edited_by;type:varchar(64)" json:"edited_by,omitempty"`
	Version    uint       `gorm:"column:version;default:1" json:"version"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// SendMessageRequest represents a send message request
type SendMessageRequest struct {
	ReceiverID string  `json:"receiver_id" binding:"required"`
	Content    string  `json:"content" binding:"required"`
	ParentID   *uint64 `json:"parent_id,omitempty"`
}

// EditMessageRequest represents a message edit request. Version must carry
// the version the client last read so stale edits are rejected.
type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
	Version uint   `json:"version" binding:"required"`
}

// MessageResponse represents a message in API responses
type MessageResponse struct {
	ID         uint64  `json:"id"`
	SenderID   string  `json:"sender_id"`
	ReceiverID string  `json:"receiver_id"`
	Content    string  `json:"content"`
	ParentID   *uint64 `json:"parent_id,omitempty"`
	IsRead     bool    `json:"is_read"`
	EditedAt   string  `json:"edited_at,omitempty"`
	EditedBy   string  `json:"edited_by,omitempty"`
	Version    uint    `json:"version"`
	CreatedAt  string  `json:"created_at"`
}

// ToResponse converts Message to MessageResponse
func (m *Message) ToResponse() *MessageResponse {
	resp := &MessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		ParentID:   m.ParentID,
		IsRead:     m.IsRead,
		Version:    m.Version,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}
	if m.EditedAt != nil {
		resp.EditedAt = m.EditedAt.Format(time.RFC3339)
	}
	if m.EditedBy != nil {
		resp.EditedBy = *m.EditedBy
	}
	return resp
}
