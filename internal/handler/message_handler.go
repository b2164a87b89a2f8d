package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/threadpost/threadpost-backend/internal/common"
	"github.com/threadpost/threadpost-backend/internal/domain"
	"github.com/threadpost/threadpost-backend/internal/middleware"
	"github.com/threadpost/threadpost-backend/internal/service"
)

// MessageHandler handles direct message HTTP requests
type MessageHandler struct {
	service service.MessageService
	threads *service.ThreadService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(svc service.MessageService, threads *service.ThreadService) *MessageHandler {
	return &MessageHandler{service: svc, threads: threads}
}

// Send handles POST /messages
func (h *MessageHandler) Send(c *gin.Context) {
	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "malformed request body")
		return
	}

	result, err := h.service.Send(middleware.GetUserID(c), &req)
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, result, nil)
}

// Edit handles PATCH /messages/:id
func (h *MessageHandler) Edit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req domain.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "malformed request body")
		return
	}

	result, err := h.service.Edit(id, middleware.GetUserID(c), &req)
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, result, nil)
}

// MarkRead handles POST /messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.service.MarkRead(id)
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, result, nil)
}

// History handles GET /messages/:id/history
func (h *MessageHandler) History(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.service.HistoryFor(id)
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, result, nil)
}

// Thread handles GET /messages/:id/thread
func (h *MessageHandler) Thread(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.threads.Assemble(id)
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, result, nil)
}

// Inbox handles GET /messages/inbox
func (h *MessageHandler) Inbox(c *gin.Context) {
	page, limit := pageParams(c)
	messages, meta, err := h.service.GetInbox(middleware.GetUserID(c), page, limit)
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, messages, meta)
}

// Sent handles GET /messages/sent
func (h *MessageHandler) Sent(c *gin.Context) {
	page, limit := pageParams(c)
	messages, meta, err := h.service.GetSent(middleware.GetUserID(c), page, limit)
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, messages, meta)
}

// Unread handles GET /messages/unread
func (h *MessageHandler) Unread(c *gin.Context) {
	messages, err := h.service.GetUnread(middleware.GetUserID(c))
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, messages, nil)
}

// Conversations handles GET /conversations
func (h *MessageHandler) Conversations(c *gin.Context) {
	page, limit := pageParams(c)
	messages, meta, err := h.service.GetConversations(middleware.GetUserID(c), page, limit)
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, messages, meta)
}

// DeleteIdentity handles DELETE /identities/:id — cascade removal of all
// messages, history and notifications of a user.
func (h *MessageHandler) DeleteIdentity(c *gin.Context) {
	userID := c.Param("id")
	if err := h.service.DeleteForIdentity(userID); err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": userID}, nil)
}

func pathID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) (int, int) {
	page := 1
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	limit := 20
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}
	return page, limit
}
