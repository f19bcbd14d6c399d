package middleware

import (
	"github.com/dailydiet/daily-diet/logger"
	"github.com/dailydiet/daily-diet/web/service"

	"github.com/gin-gonic/gin"
)

const auditKey = "AUDIT_ENTRY"

// RecordAudit marks the request for auditing. The entry is written by
// AuditMiddleware once the handler returns.
func RecordAudit(c *gin.Context, e service.AuditEntry) {
	c.Set(auditKey, e)
}

// AuditMiddleware writes the entry recorded by the handler, if any, adding the
// client IP and user agent.
func AuditMiddleware(auditService *service.AuditLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		obj, ok := c.Get(auditKey)
		if !ok {
			return
		}
		e, ok := obj.(service.AuditEntry)
		if !ok {
			return
		}
		e.IP = c.ClientIP()
		e.UserAgent = c.GetHeader("User-Agent")

		if err := auditService.LogAction(c.Request.Context(), e); err != nil {
			logger.Warning("Failed to log audit action:", err)
		}
	}
}
