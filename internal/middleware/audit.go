package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// AuditRecorder persists audit trail entries.
type AuditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Audit records an audit log entry after each successful request. The :id path
// parameter, when present, becomes the resource id.
func Audit(recorder AuditRecorder, logger *zap.Logger, action, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		c.Next()

		if recorder == nil || c.Writer.Status() >= 400 {
			return
		}

		entry := &models.AuditLog{
			Action:    action,
			Resource:  resource,
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		}
		if principal, ok := PrincipalFromContext(c); ok {
			userID := principal.UserID
			entry.UserID = &userID
		}
		if id := c.Param("id"); id != "" {
			entry.ResourceID = &id
		}

		if err := recorder.CreateAuditLog(c.Request.Context(), entry); err != nil {
			logger.Warn("failed to record audit log",
				zap.String("action", action),
				zap.String("resource", resource),
				zap.Error(err),
			)
		}
	}
}
