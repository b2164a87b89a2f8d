package domain

import "time"

// MessageHistory stores the pre-edit content of a message. Rows are
// append-only: one per content-changing edit, never updated.
type MessageHistory struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MessageID  uint64    `gorm:"column:message_id;index" json:"message_id"`
	Content    string    `gorm:"column:content;type:text" json:"content"`
	EditedBy   *string   `gorm:"column:edited_by;type:varchar(64)" json:"edited_by,omitempty"`
	ArchivedAt time.Time `gorm:"column:archived_at;autoCreateTime" json:"archived_at"`
}

func (MessageHistory) TableName() string {
	return "message_histories"
}

// HistoryResponse represents a history entry in API responses
type HistoryResponse struct {
	ID         uint64 `json:"id"`
	MessageID  uint64 `json:"message_id"`
	Content    string `json:"content"`
	EditedBy   string `json:"edited_by,omitempty"`
	ArchivedAt string `json:"archived_at"`
}

// ToResponse converts MessageHistory to HistoryResponse
func (h *MessageHistory) ToResponse() *HistoryResponse {
	resp := &HistoryResponse{
		ID:         h.ID,
		MessageID:  h.MessageID,
		Content:    h.Content,
		ArchivedAt: h.ArchivedAt.Format(time.RFC3339),
	}
	if h.EditedBy != nil {
		resp.EditedBy = *h.EditedBy
	}
	return resp
}
