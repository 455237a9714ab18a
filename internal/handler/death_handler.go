package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civisuite/vitals-ledger/internal/dto"
	"github.com/civisuite/vitals-ledger/internal/ledger"
	"github.com/civisuite/vitals-ledger/internal/models"
	"github.com/civisuite/vitals-ledger/internal/service"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
	"github.com/civisuite/vitals-ledger/pkg/response"
)

type deathService interface {
	Request(ctx context.Context, actor models.Actor, req dto.RequestDeathRequest) (*models.DeathCertificate, error)
	Issue(ctx context.Context, actor models.Actor, id string) (*models.DeathCertificate, error)
	Get(ctx context.Context, source ledger.Source, id string) (*models.DeathCertificate, error)
	List(ctx context.Context, source ledger.Source) ([]models.DeathCertificate, error)
}

type deathEffectsRunner interface {
	ProcessDeathEffects(ctx context.Context, actor models.Actor, deathCertificateID string) (*service.DeathEffectsResult, error)
}

// DeathHandler exposes death certificate endpoints, including the cascade
// trigger.
type DeathHandler struct {
	service deathService
	effects deathEffectsRunner
}

// NewDeathHandler builds a new handler.
func NewDeathHandler(service deathService, effects deathEffectsRunner) *DeathHandler {
	return &DeathHandler{service: service, effects: effects}
}

// Request godoc
// @Summary File a death certificate
// @Tags Death
// @Accept json
// @Produce json
// @Param payload body dto.RequestDeathRequest true "Death payload"
// @Success 201 {object} response.Envelope
// @Router /deaths [post]
func (h *DeathHandler) Request(c *gin.Context) {
	var req dto.RequestDeathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid death payload"))
		return
	}
	cert, err := h.service.Request(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cert)
}

// Issue godoc
// @Summary Issue a requested death certificate
// @Tags Death
// @Produce json
// @Param id path string true "Certificate identifier"
// @Success 200 {object} response.Envelope
// @Router /deaths/{id}/issue [post]
func (h *DeathHandler) Issue(c *gin.Context) {
	cert, err := h.service.Issue(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cert, nil)
}

// ProcessEffects godoc
// @Summary Apply the death cascade
// @Tags Death
// @Produce json
// @Param id path string true "Certificate identifier"
// @Success 200 {object} response.Envelope
// @Router /deaths/{id}/effects [post]
func (h *DeathHandler) ProcessEffects(c *gin.Context) {
	result, err := h.effects.ProcessDeathEffects(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Get godoc
// @Summary Get a death certificate
// @Tags Death
// @Produce json
// @Param id path string true "Certificate identifier"
// @Success 200 {object} response.Envelope
// @Router /deaths/{id} [get]
func (h *DeathHandler) Get(c *gin.Context) {
	cert, err := h.service.Get(c.Request.Context(), sourceFromQuery(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cert, nil)
}

// List godoc
// @Summary List death certificates
// @Tags Death
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /deaths [get]
func (h *DeathHandler) List(c *gin.Context) {
	certs, err := h.service.List(c.Request.Context(), sourceFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, certs, nil)
}
