package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/civisuite/vitals-ledger/internal/ledger"
	"github.com/civisuite/vitals-ledger/internal/middleware"
	"github.com/civisuite/vitals-ledger/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func actorFromContext(c *gin.Context) models.Actor {
	claims := claimsFromContext(c)
	if claims == nil {
		return models.Actor{}
	}
	return models.Actor{Account: claims.Account, Role: claims.Role}
}

// sourceFromQuery selects production or the simulation snapshot for reads.
func sourceFromQuery(c *gin.Context) ledger.Source {
	if c.Query("source") == string(ledger.SourceSimulation) {
		return ledger.SourceSimulation
	}
	return ledger.SourceProduction
}
