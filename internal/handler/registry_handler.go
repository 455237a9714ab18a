package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civisuite/vitals-ledger/internal/dto"
	"github.com/civisuite/vitals-ledger/internal/ledger"
	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
	"github.com/civisuite/vitals-ledger/pkg/response"
)

type registryService interface {
	Bootstrap(ctx context.Context, actor models.Actor, candidate string) (*models.Registrar, error)
	Add(ctx context.Context, actor models.Actor, candidate string) (*models.Registrar, error)
	Remove(ctx context.Context, actor models.Actor, target string) (*models.Registrar, error)
	List(ctx context.Context, source ledger.Source) ([]models.Registrar, error)
}

// RegistryHandler exposes access registry endpoints.
type RegistryHandler struct {
	service registryService
}

// NewRegistryHandler builds a new handler.
func NewRegistryHandler(service registryService) *RegistryHandler {
	return &RegistryHandler{service: service}
}

// Bootstrap godoc
// @Summary Seat the first registrar
// @Tags Registry
// @Accept json
// @Produce json
// @Param payload body dto.RegistrarRequest true "Registrar payload"
// @Success 201 {object} response.Envelope
// @Router /registrars/bootstrap [post]
func (h *RegistryHandler) Bootstrap(c *gin.Context) {
	var req dto.RegistrarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registrar payload"))
		return
	}
	registrar, err := h.service.Bootstrap(c.Request.Context(), actorFromContext(c), req.Account)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, registrar)
}

// Add godoc
// @Summary Authorize a registrar
// @Tags Registry
// @Accept json
// @Produce json
// @Param payload body dto.RegistrarRequest true "Registrar payload"
// @Success 201 {object} response.Envelope
// @Router /registrars [post]
func (h *RegistryHandler) Add(c *gin.Context) {
	var req dto.RegistrarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registrar payload"))
		return
	}
	registrar, err := h.service.Add(c.Request.Context(), actorFromContext(c), req.Account)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, registrar)
}

// Remove godoc
// @Summary Deactivate a registrar
// @Tags Registry
// @Produce json
// @Param account path string true "Registrar account"
// @Success 200 {object} response.Envelope
// @Router /registrars/{account} [delete]
func (h *RegistryHandler) Remove(c *gin.Context) {
	registrar, err := h.service.Remove(c.Request.Context(), actorFromContext(c), c.Param("account"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registrar, nil)
}

// List godoc
// @Summary List registrars
// @Tags Registry
// @Produce json
// @Param source query string false "Read source (production or simulation)"
// @Success 200 {object} response.Envelope
// @Router /registrars [get]
func (h *RegistryHandler) List(c *gin.Context) {
	registrars, err := h.service.List(c.Request.Context(), sourceFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registrars, nil)
}
