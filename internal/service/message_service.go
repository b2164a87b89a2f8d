package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/threadpost/threadpost-backend/internal/common"
	"github.com/threadpost/threadpost-backend/internal/dispatch"
	"github.com/threadpost/threadpost-backend/internal/domain"
	"github.com/threadpost/threadpost-backend/internal/repository"
)

// MessageService business logic for direct messages. Every mutating
// operation runs inside one storage transaction together with the
// dispatcher hooks it triggers: either all effects commit or none do.
type MessageService interface {
	Send(senderID string, req *domain.SendMessageRequest) (*domain.MessageResponse, error)
	Edit(id uint64, editorID string, req *domain.EditMessageRequest) (*domain.MessageResponse, error)
	MarkRead(id uint64) (*domain.MessageResponse, error)
	ThreadRoot(id uint64) (*domain.MessageResponse, error)
	DeleteForIdentity(userID string) error
	HistoryFor(id uint64) ([]*domain.HistoryResponse, error)
	GetInbox(userID string, page, limit int) ([]*domain.MessageResponse, *common.Meta, error)
	GetSent(userID string, page, limit int) ([]*domain.MessageResponse, *common.Meta, error)
	GetUnread(userID string) ([]*domain.MessageResponse, error)
	GetConversations(userID string, page, limit int) ([]*domain.MessageResponse, *common.Meta, error)
}

type messageService struct {
	db            *gorm.DB
	messages      repository.MessageRepository
	histories     repository.HistoryRepository
	notifications repository.NotificationRepository
	dispatcher    *dispatch.Dispatcher
	maxDepth      int
}

// NewMessageService creates a new MessageService. The dispatcher must have
// its hooks registered before the service handles traffic; it is an
// explicit dependency, not ambient state.
func NewMessageService(
	db *gorm.DB,
	messages repository.MessageRepository,
	histories repository.HistoryRepository,
	notifications repository.NotificationRepository,
	dispatcher *dispatch.Dispatcher,
	maxDepth int,
) MessageService {
	return &messageService{
		db:            db,
		messages:      messages,
		histories:     histories,
		notifications: notifications,
		dispatcher:    dispatcher,
		maxDepth:      maxDepth,
	}
}

// Send creates a message and dispatches the after-create hooks in the same
// transaction.
func (s *messageService) Send(senderID string, req *domain.SendMessageRequest) (*domain.MessageResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content must not be empty", common.ErrValidation)
	}

	if req.ParentID != nil {
		if _, err := s.messages.FindByID(*req.ParentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: parent message %d", common.ErrNotFound, *req.ParentID)
			}
			return nil, err
		}
	}

	msg := &domain.Message{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Content:    content,
		ParentID:   req.ParentID,
		Version:    1,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.messages.WithTx(tx).Create(msg); err != nil {
			return err
		}
		return s.dispatcher.Dispatch(dispatch.EventAfterCreate, &dispatch.Context{
			Tx:      tx,
			Message: msg,
			Actor:   senderID,
		})
	})
	if err != nil {
		return nil, err
	}
	return msg.ToResponse(), nil
}

// Edit commits a content change. Unchanged content is a semantic no-op: no
// history entry, no edit metadata. A stale version is rejected with the
// conflict error instead of silently overwriting.
func (s *messageService) Edit(id uint64, editorID string, req *domain.EditMessageRequest) (*domain.MessageResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content must not be empty", common.ErrValidation)
	}
	if req.Version == 0 {
		return nil, fmt.Errorf("%w: version must be set", common.ErrValidation)
	}

	msg, err := s.findMessage(id)
	if err != nil {
		return nil, err
	}
	if msg.Version != req.Version {
		return nil, fmt.Errorf("%w: message %d was edited since version %d", common.ErrConflict, id, req.Version)
	}
	if msg.Content == content {
		return msg.ToResponse(), nil
	}

	updated := *msg
	updated.Content = content

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.dispatcher.Dispatch(dispatch.EventBeforeWrite, &dispatch.Context{
			Tx:      tx,
			Message: &updated,
			Prior:   msg,
			Actor:   editorID,
		}); err != nil {
			return err
		}

		affected, err := s.messages.WithTx(tx).
			UpdateContent(id, req.Version, content, updated.EditedAt, updated.EditedBy)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: message %d was edited since version %d", common.ErrConflict, id, req.Version)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated.Version = req.Version + 1
	return updated.ToResponse(), nil
}

// MarkRead flips the read flag and marks every notification sourced from
// this message as read. The read-through is a direct column update inside
// the same transaction, not a re-dispatched event, so it cannot re-enter.
func (s *messageService) MarkRead(id uint64) (*domain.MessageResponse, error) {
	msg, err := s.findMessage(id)
	if err != nil {
		return nil, err
	}
	if msg.IsRead {
		return msg.ToResponse(), nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.messages.WithTx(tx).MarkAsRead(id); err != nil {
			return err
		}
		return s.notifications.WithTx(tx).MarkReadByMessage(id)
	})
	if err != nil {
		return nil, err
	}

	msg.IsRead = true
	return msg.ToResponse(), nil
}

// ThreadRoot walks parent links upward until a message with no parent.
// Parent chains are acyclic by invariant, but the walk is bounded so
// corrupted data surfaces as an error instead of hanging the call.
func (s *messageService) ThreadRoot(id uint64) (*domain.MessageResponse, error) {
	current, err := s.findMessage(id)
	if err != nil {
		return nil, err
	}

	for depth := 0; depth < s.maxDepth; depth++ {
		if current.ParentID == nil {
			return current.ToResponse(), nil
		}
		current, err = s.findMessage(*current.ParentID)
		if err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: message %d", common.ErrCycle, id)
}

// DeleteForIdentity removes every trace of a user in one transaction: the
// registered cascade hook deletes their messages, the history of those
// messages, and all notifications referencing either.
func (s *messageService) DeleteForIdentity(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id must not be empty", common.ErrValidation)
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.dispatcher.Dispatch(dispatch.EventAfterDeleteIdentity, &dispatch.Context{
			Tx:     tx,
			UserID: userID,
		})
	})
}

// HistoryFor returns the edit history of a message, most recent first.
func (s *messageService) HistoryFor(id uint64) ([]*domain.HistoryResponse, error) {
	if _, err := s.findMessage(id); err != nil {
		return nil, err
	}

	histories, err := s.histories.FindByMessageID(id)
	if err != nil {
		return nil, err
	}
	responses := make([]*domain.HistoryResponse, len(histories))
	for i, h := range histories {
		responses[i] = h.ToResponse()
	}
	return responses, nil
}

// GetInbox returns received messages, newest first
func (s *messageService) GetInbox(userID string, page, limit int) ([]*domain.MessageResponse, *common.Meta, error) {
	page, limit = clampPage(page, limit)
	messages, total, err := s.messages.FindInbox(userID, page, limit)
	if err != nil {
		return nil, nil, err
	}
	return toResponses(messages), &common.Meta{Page: page, Limit: limit, Total: total}, nil
}

// GetSent returns sent messages, newest first
func (s *messageService) GetSent(userID string, page, limit int) ([]*domain.MessageResponse, *common.Meta, error) {
	page, limit = clampPage(page, limit)
	messages, total, err := s.messages.FindSent(userID, page, limit)
	if err != nil {
		return nil, nil, err
	}
	return toResponses(messages), &common.Meta{Page: page, Limit: limit, Total: total}, nil
}

// GetUnread returns unread received messages, newest first
func (s *messageService) GetUnread(userID string) ([]*domain.MessageResponse, error) {
	messages, err := s.messages.FindUnread(userID)
	if err != nil {
		return nil, err
	}
	return toResponses(messages), nil
}

// GetConversations returns thread roots the user participates in
func (s *messageService) GetConversations(userID string, page, limit int) ([]*domain.MessageResponse, *common.Meta, error) {
	page, limit = clampPage(page, limit)
	messages, total, err := s.messages.FindConversationRoots(userID, page, limit)
	if err != nil {
		return nil, nil, err
	}
	return toResponses(messages), &common.Meta{Page: page, Limit: limit, Total: total}, nil
}

func (s *messageService) findMessage(id uint64) (*domain.Message, error) {
	msg, err := s.messages.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: message %d", common.ErrNotFound, id)
		}
		return nil, err
	}
	return msg, nil
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	return page, limit
}

func toResponses(messages []*domain.Message) []*domain.MessageResponse {
	responses := make([]*domain.MessageResponse, len(messages))
	for i, m := range messages {
		responses[i] = m.ToResponse()
	}
	return responses
}
