package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"workorder-service/internal/service/notification"
)

type NotificationHandler struct {
	service *notification.Service
	logger  *zap.Logger
}

func NewNotificationHandler(service *notification.Service, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, logger: logger}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID, _ := currentUser(c)

	notifications, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, "listNotifications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id, userID); err != nil {
		writeError(c, h.logger, "markNotificationRead", err)
		return
	}
	c.Status(http.StatusNoContent)
}
