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

type voterService interface {
	Register(ctx context.Context, actor models.Actor, req dto.RegisterVoterRequest) (*models.VoterRegistration, error)
	Approve(ctx context.Context, actor models.Actor, account string) (*models.VoterRegistration, error)
	Challenge(ctx context.Context, actor models.Actor, account string) (*models.VoterRegistration, error)
	Adjudicate(ctx context.Context, actor models.Actor, account string, req dto.AdjudicateVoterRequest) (*models.VoterRegistration, error)
	Remove(ctx context.Context, actor models.Actor, account string) (*models.VoterRegistration, error)
	Get(ctx context.Context, source ledger.Source, account string) (*models.VoterRegistration, error)
	List(ctx context.Context, source ledger.Source, districtID string) ([]models.VoterRegistration, error)
}

// VoterHandler exposes voter registration endpoints.
type VoterHandler struct {
	service voterService
}

// NewVoterHandler builds a new handler.
func NewVoterHandler(service voterService) *VoterHandler {
	return &VoterHandler{service: service}
}

// Register godoc
// @Summary Register the calling account to vote
// @Tags Voter
// @Accept json
// @Produce json
// @Param payload body dto.RegisterVoterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /voters [post]
func (h *VoterHandler) Register(c *gin.Context) {
	var req dto.RegisterVoterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}
	reg, err := h.service.Register(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reg)
}

// Approve godoc
// @Summary Approve a pending registration
// @Tags Voter
// @Produce json
// @Param account path string true "Voter account"
// @Success 200 {object} response.Envelope
// @Router /voters/{account}/approve [post]
func (h *VoterHandler) Approve(c *gin.Context) {
	reg, err := h.service.Approve(c.Request.Context(), actorFromContext(c), c.Param("account"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// Challenge godoc
// @Summary Challenge an approved registration
// @Tags Voter
// @Produce json
// @Param account path string true "Voter account"
// @Success 200 {object} response.Envelope
// @Router /voters/{account}/challenge [post]
func (h *VoterHandler) Challenge(c *gin.Context) {
	reg, err := h.service.Challenge(c.Request.Context(), actorFromContext(c), c.Param("account"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// Adjudicate godoc
// @Summary Resolve a challenged registration
// @Tags Voter
// @Accept json
// @Produce json
// @Param account path string true "Voter account"
// @Param payload body dto.AdjudicateVoterRequest true "Adjudication payload"
// @Success 200 {object} response.Envelope
// @Router /voters/{account}/adjudicate [post]
func (h *VoterHandler) Adjudicate(c *gin.Context) {
	var req dto.AdjudicateVoterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid adjudication payload"))
		return
	}
	reg, err := h.service.Adjudicate(c.Request.Context(), actorFromContext(c), c.Param("account"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// Remove godoc
// @Summary Remove a registration
// @Tags Voter
// @Produce json
// @Param account path string true "Voter account"
// @Success 200 {object} response.Envelope
// @Router /voters/{account} [delete]
func (h *VoterHandler) Remove(c *gin.Context) {
	reg, err := h.service.Remove(c.Request.Context(), actorFromContext(c), c.Param("account"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// Get godoc
// @Summary Get a registration by account
// @Tags Voter
// @Produce json
// @Param account path string true "Voter account"
// @Success 200 {object} response.Envelope
// @Router /voters/{account} [get]
func (h *VoterHandler) Get(c *gin.Context) {
	reg, err := h.service.Get(c.Request.Context(), sourceFromQuery(c), c.Param("account"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// List godoc
// @Summary List registrations
// @Tags Voter
// @Produce json
// @Param district query string false "Filter by district"
// @Success 200 {object} response.Envelope
// @Router /voters [get]
func (h *VoterHandler) List(c *gin.Context) {
	regs, err := h.service.List(c.Request.Context(), sourceFromQuery(c), c.Query("district"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, regs, nil)
}
