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

type districtService interface {
	Add(ctx context.Context, actor models.Actor, req dto.AddDistrictRequest) (*models.District, error)
	Get(ctx context.Context, source ledger.Source, id string) (*models.District, error)
	List(ctx context.Context, source ledger.Source) ([]models.District, error)
	Roster(ctx context.Context, source ledger.Source, districtID string) ([]service.RosterEntry, error)
}

type redistrictRunner interface {
	Redistrict(ctx context.Context, actor models.Actor, req dto.RedistrictRequest) ([]string, error)
}

// DistrictHandler exposes election district endpoints.
type DistrictHandler struct {
	service districtService
	effects redistrictRunner
}

// NewDistrictHandler builds a new handler.
func NewDistrictHandler(service districtService, effects redistrictRunner) *DistrictHandler {
	return &DistrictHandler{service: service, effects: effects}
}

// Add godoc
// @Summary Register an election district
// @Tags District
// @Accept json
// @Produce json
// @Param payload body dto.AddDistrictRequest true "District payload"
// @Success 201 {object} response.Envelope
// @Router /districts [post]
func (h *DistrictHandler) Add(c *gin.Context) {
	var req dto.AddDistrictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid district payload"))
		return
	}
	district, err := h.service.Add(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, district)
}

// Get godoc
// @Summary Get a district
// @Tags District
// @Produce json
// @Param id path string true "District identifier"
// @Success 200 {object} response.Envelope
// @Router /districts/{id} [get]
func (h *DistrictHandler) Get(c *gin.Context) {
	district, err := h.service.Get(c.Request.Context(), sourceFromQuery(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, district, nil)
}

// List godoc
// @Summary List districts
// @Tags District
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /districts [get]
func (h *DistrictHandler) List(c *gin.Context) {
	districts, err := h.service.List(c.Request.Context(), sourceFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, districts, nil)
}

// Roster godoc
// @Summary Get a district roster
// @Tags District
// @Produce json
// @Param id path string true "District identifier"
// @Success 200 {object} response.Envelope
// @Router /districts/{id}/roster [get]
func (h *DistrictHandler) Roster(c *gin.Context) {
	roster, err := h.service.Roster(c.Request.Context(), sourceFromQuery(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Redistrict godoc
// @Summary Move voter registrations between districts
// @Tags District
// @Accept json
// @Produce json
// @Param payload body dto.RedistrictRequest true "Redistricting payload"
// @Success 200 {object} response.Envelope
// @Router /districts/redistrict [post]
func (h *DistrictHandler) Redistrict(c *gin.Context) {
	var req dto.RedistrictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid redistricting payload"))
		return
	}
	moved, err := h.effects.Redistrict(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"moved": moved}, nil)
}
