package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
	"github.com/civisuite/vitals-ledger/pkg/response"
)

// RequireRoles gates a route on the coarse token role. This is transport
// gating only; the authoritative registrar capability check happens inside
// each service against the in-ledger access registry.
func RequireRoles(roles ...models.ActorRole) gin.HandlerFunc {
	allowed := make(map[models.ActorRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
