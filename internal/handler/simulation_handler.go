package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civisuite/vitals-ledger/internal/dto"
	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
	"github.com/civisuite/vitals-ledger/pkg/response"
)

type simulationService interface {
	Start(ctx context.Context, actor models.Actor, req dto.StartSimulationRequest) (*models.SimulationSession, error)
	SimulateElectionDay(ctx context.Context, actor models.Actor, req dto.ElectionDayRequest) (*models.SimulationSession, error)
	Status(ctx context.Context) (*models.SimulationSession, error)
	End(ctx context.Context, actor models.Actor, req dto.EndSimulationRequest) (*models.SimulationSession, error)
}

// SimulationHandler exposes what-if controller endpoints.
type SimulationHandler struct {
	service simulationService
}

// NewSimulationHandler builds a new handler.
func NewSimulationHandler(service simulationService) *SimulationHandler {
	return &SimulationHandler{service: service}
}

// Start godoc
// @Summary Start a simulation session
// @Tags Simulation
// @Accept json
// @Produce json
// @Param payload body dto.StartSimulationRequest true "Simulation payload"
// @Success 201 {object} response.Envelope
// @Router /simulations [post]
func (h *SimulationHandler) Start(c *gin.Context) {
	var req dto.StartSimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid simulation payload"))
		return
	}
	session, err := h.service.Start(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// ElectionDay godoc
// @Summary Run an election-day turnout projection
// @Tags Simulation
// @Accept json
// @Produce json
// @Param payload body dto.ElectionDayRequest true "Election day payload"
// @Success 201 {object} response.Envelope
// @Router /simulations/election-day [post]
func (h *SimulationHandler) ElectionDay(c *gin.Context) {
	var req dto.ElectionDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid election day payload"))
		return
	}
	session, err := h.service.SimulateElectionDay(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Status godoc
// @Summary Get the running simulation session
// @Tags Simulation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /simulations/current [get]
func (h *SimulationHandler) Status(c *gin.Context) {
	session, err := h.service.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// End godoc
// @Summary End the running simulation session
// @Tags Simulation
// @Accept json
// @Produce json
// @Param payload body dto.EndSimulationRequest true "End payload"
// @Success 200 {object} response.Envelope
// @Router /simulations/end [post]
func (h *SimulationHandler) End(c *gin.Context) {
	var req dto.EndSimulationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid end payload"))
			return
		}
	}
	session, err := h.service.End(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}
