package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/threadpost/threadpost-backend/internal/common"
	"github.com/threadpost/threadpost-backend/internal/middleware"
	"github.com/threadpost/threadpost-backend/internal/service"
)

// NotificationHandler handles notification feed HTTP requests
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// Unread handles GET /notifications/unread
func (h *NotificationHandler) Unread(c *gin.Context) {
	items, err := h.service.GetUnread(middleware.GetUserID(c))
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, items, nil)
}

// Summary handles GET /notifications/summary
func (h *NotificationHandler) Summary(c *gin.Context) {
	summary, err := h.service.GetSummary(middleware.GetUserID(c))
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, summary, nil)
}

// MarkRead handles POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	item, err := h.service.MarkAsRead(middleware.GetUserID(c), id)
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, item, nil)
}

// MarkAllRead handles POST /notifications/read-all. Source messages stay
// unread; only the single mark-read path reads through to the message.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.service.MarkAllAsRead(userID); err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"marked": "all"}, nil)
}
