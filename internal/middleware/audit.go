package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/eduvillage-api/internal/models"
)

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// Audit records an audit entry after a successful request. idParam names the
// route parameter holding the resource id; leave it empty when there is none.
func Audit(recorder AuditRecorder, logger *zap.Logger, action, resource, idParam string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
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
		if claims := CurrentUser(c); claims != nil {
			userID := claims.UserID
			entry.UserID = &userID
		}
		if idParam != "" {
			if id := c.Param(idParam); id != "" {
				entry.ResourceID = &id
			}
		}
		entry.NewValues, _ = json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		if err := recorder.Create(c.Request.Context(), entry); err != nil {
			logger.Warn("audit write failed", zap.String("action", action), zap.Error(err))
		}
	}
}
