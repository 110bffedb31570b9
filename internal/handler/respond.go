package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"workorder-service/internal/service/workorder"
	applog "workorder-service/pkg/logger"
	"workorder-service/pkg/metrics"
)

// writeError maps command errors onto the HTTP surface. Authorization
// failures on a work order the caller cannot see come back as 403 rather than
// leaking existence, state conflicts as 409, bad input as 400, missing
// aggregates as 404. Anything unclassified is a 500 and gets logged.
func writeError(c *gin.Context, logger *zap.Logger, command string, err error) {
	kind := workorder.KindOf(err)
	reason := workorder.ReasonOf(err)

	var status int
	switch kind {
	case workorder.KindUnauthorized:
		status = http.StatusForbidden
	case workorder.KindInvalidState:
		status = http.StatusConflict
	case workorder.KindValidation:
		status = http.StatusBadRequest
	case workorder.KindNotFound:
		status = http.StatusNotFound
	default:
		applog.WithRequestID(c.GetString("request_id"), logger).
			Error("Command failed", zap.String("command", command), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	metrics.RecordCommandRejected(command, kind.String())
	c.JSON(status, gin.H{"error": reason, "kind": kind.String()})
}

// currentUser reads the identity the auth middleware stored on the context.
func currentUser(c *gin.Context) (int64, string) {
	return c.GetInt64("user_id"), c.GetString("role")
}
