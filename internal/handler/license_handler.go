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

type licenseService interface {
	Issue(ctx context.Context, actor models.Actor, req dto.IssueLicenseRequest) (*models.DriverLicense, error)
	Suspend(ctx context.Context, actor models.Actor, id string) (*models.DriverLicense, error)
	Reinstate(ctx context.Context, actor models.Actor, id string) (*models.DriverLicense, error)
	Revoke(ctx context.Context, actor models.Actor, id string) (*models.DriverLicense, error)
	Get(ctx context.Context, source ledger.Source, id string) (*models.DriverLicense, error)
	List(ctx context.Context, source ledger.Source, holder string) ([]models.DriverLicense, error)
}

// LicenseHandler exposes driver license endpoints.
type LicenseHandler struct {
	service licenseService
}

// NewLicenseHandler builds a new handler.
func NewLicenseHandler(service licenseService) *LicenseHandler {
	return &LicenseHandler{service: service}
}

// Issue godoc
// @Summary Issue a driver license
// @Tags License
// @Accept json
// @Produce json
// @Param payload body dto.IssueLicenseRequest true "License payload"
// @Success 201 {object} response.Envelope
// @Router /licenses [post]
func (h *LicenseHandler) Issue(c *gin.Context) {
	var req dto.IssueLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid license payload"))
		return
	}
	license, err := h.service.Issue(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, license)
}

// Suspend godoc
// @Summary Suspend an active driver license
// @Tags License
// @Produce json
// @Param id path string true "License identifier"
// @Success 200 {object} response.Envelope
// @Router /licenses/{id}/suspend [post]
func (h *LicenseHandler) Suspend(c *gin.Context) {
	license, err := h.service.Suspend(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, license, nil)
}

// Reinstate godoc
// @Summary Reinstate a suspended driver license
// @Tags License
// @Produce json
// @Param id path string true "License identifier"
// @Success 200 {object} response.Envelope
// @Router /licenses/{id}/reinstate [post]
func (h *LicenseHandler) Reinstate(c *gin.Context) {
	license, err := h.service.Reinstate(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, license, nil)
}

// Revoke godoc
// @Summary Revoke a driver license
// @Tags License
// @Produce json
// @Param id path string true "License identifier"
// @Success 200 {object} response.Envelope
// @Router /licenses/{id}/revoke [post]
func (h *LicenseHandler) Revoke(c *gin.Context) {
	license, err := h.service.Revoke(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, license, nil)
}

// Get godoc
// @Summary Get a driver license
// @Tags License
// @Produce json
// @Param id path string true "License identifier"
// @Success 200 {object} response.Envelope
// @Router /licenses/{id} [get]
func (h *LicenseHandler) Get(c *gin.Context) {
	license, err := h.service.Get(c.Request.Context(), sourceFromQuery(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, license, nil)
}

// List godoc
// @Summary List driver licenses
// @Tags License
// @Produce json
// @Param holder query string false "Filter by holder account"
// @Success 200 {object} response.Envelope
// @Router /licenses [get]
func (h *LicenseHandler) List(c *gin.Context) {
	licenses, err := h.service.List(c.Request.Context(), sourceFromQuery(c), c.Query("holder"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, licenses, nil)
}
