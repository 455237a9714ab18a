package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
	"github.com/civisuite/vitals-ledger/pkg/response"
)

type tokenMinter interface {
	MintToken(account string, role models.ActorRole) (string, time.Time, error)
}

// AuthHandler exposes the development token mint. Production deployments
// attest actor identity upstream and run with the mint disabled.
type AuthHandler struct {
	service tokenMinter
}

// NewAuthHandler builds a new handler.
func NewAuthHandler(service tokenMinter) *AuthHandler {
	return &AuthHandler{service: service}
}

type mintTokenRequest struct {
	Account string           `json:"account"`
	Role    models.ActorRole `json:"role"`
}

// Mint godoc
// @Summary Mint a development bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body mintTokenRequest true "Token payload"
// @Success 200 {object} response.Envelope
// @Router /auth/dev-token [post]
func (h *AuthHandler) Mint(c *gin.Context) {
	var req mintTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid token payload"))
		return
	}
	token, expiresAt, err := h.service.MintToken(req.Account, req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
	}, nil)
}
