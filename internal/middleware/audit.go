package middleware

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/civisuite/vitals-ledger/internal/models"
	"github.com/civisuite/vitals-ledger/internal/service"
)

// Audit records a trail entry after successful requests on sensitive routes.
// Failures are already recorded inside the services; this middleware adds
// transport metadata (client address, user agent) the services never see.
func Audit(audit *service.AuditService, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if audit == nil || !audit.Enabled() || c.Writer.Status() >= 400 {
			return
		}

		var actor *string
		if claims, ok := c.Get(ContextUserKey); ok {
			account := claims.(*models.JWTClaims).Account
			actor = &account
		}

		detail, _ := json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		_ = audit.CreateAuditLog(c.Request.Context(), &models.AuditLog{
			Actor:     actor,
			Action:    action,
			Resource:  resource,
			Outcome:   "success",
			Detail:    detail,
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		})
	}
}
