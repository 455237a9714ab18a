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

type marriageService interface {
	Request(ctx context.Context, actor models.Actor, req dto.RequestMarriageRequest) (*models.MarriageLicense, error)
	Issue(ctx context.Context, actor models.Actor, id string) (*models.MarriageLicense, error)
	Revoke(ctx context.Context, actor models.Actor, id string) (*models.MarriageLicense, error)
	Get(ctx context.Context, source ledger.Source, id string) (*models.MarriageLicense, error)
	List(ctx context.Context, source ledger.Source, account string) ([]models.MarriageLicense, error)
}

// MarriageHandler exposes marriage license endpoints.
type MarriageHandler struct {
	service marriageService
}

// NewMarriageHandler builds a new handler.
func NewMarriageHandler(service marriageService) *MarriageHandler {
	return &MarriageHandler{service: service}
}

// Request godoc
// @Summary File a marriage license
// @Tags Marriage
// @Accept json
// @Produce json
// @Param payload body dto.RequestMarriageRequest true "Marriage payload"
// @Success 201 {object} response.Envelope
// @Router /marriages [post]
func (h *MarriageHandler) Request(c *gin.Context) {
	var req dto.RequestMarriageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid marriage payload"))
		return
	}
	license, err := h.service.Request(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, license)
}

// Issue godoc
// @Summary Issue a pending marriage license
// @Tags Marriage
// @Produce json
// @Param id path string true "License identifier"
// @Success 200 {object} response.Envelope
// @Router /marriages/{id}/issue [post]
func (h *MarriageHandler) Issue(c *gin.Context) {
	license, err := h.service.Issue(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, license, nil)
}

// Revoke godoc
// @Summary Revoke an issued marriage license
// @Tags Marriage
// @Produce json
// @Param id path string true "License identifier"
// @Success 200 {object} response.Envelope
// @Router /marriages/{id}/revoke [post]
func (h *MarriageHandler) Revoke(c *gin.Context) {
	license, err := h.service.Revoke(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, license, nil)
}

// Get godoc
// @Summary Get a marriage license
// @Tags Marriage
// @Produce json
// @Param id path string true "License identifier"
// @Success 200 {object} response.Envelope
// @Router /marriages/{id} [get]
func (h *MarriageHandler) Get(c *gin.Context) {
	license, err := h.service.Get(c.Request.Context(), sourceFromQuery(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, license, nil)
}

// List godoc
// @Summary List marriage licenses
// @Tags Marriage
// @Produce json
// @Param account query string false "Filter by partner account"
// @Success 200 {object} response.Envelope
// @Router /marriages [get]
func (h *MarriageHandler) List(c *gin.Context) {
	licenses, err := h.service.List(c.Request.Context(), sourceFromQuery(c), c.Query("account"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, licenses, nil)
}
