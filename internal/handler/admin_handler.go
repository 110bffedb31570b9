package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"workorder-service/pkg/outbox"
	"workorder-service/pkg/rbac"
)

// AdminHandler exposes operational endpoints. Everything here is gated on an
// admin permission, not work order party membership.
type AdminHandler struct {
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewAdminHandler(outboxRepo *outbox.Repository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{outbox: outboxRepo, logger: logger}
}

// ReplayOutboxEvent re-queues a parked outbox event for dispatch.
func (h *AdminHandler) ReplayOutboxEvent(c *gin.Context) {
	_, role := currentUser(c)
	if err := rbac.CheckPermission(role, rbac.PermissionReplayOutbox); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.outbox.ReplayEvent(c.Request.Context(), id); err != nil {
		h.logger.Error("Failed to replay outbox event", zap.Int64("event_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.logger.Info("Outbox event requeued", zap.Int64("event_id", id))
	c.JSON(http.StatusOK, gin.H{"status": "requeued"})
}
