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

type disclosureService interface {
	ProveAgeAtLeast(ctx context.Context, actor models.Actor, req dto.AgeProofRequest) (*dto.AgeProof, error)
	Verify(ctx context.Context, req dto.VerifyAgeProofRequest) (*dto.VerifyAgeProofResult, error)
}

// DisclosureHandler exposes selective disclosure endpoints.
type DisclosureHandler struct {
	service disclosureService
}

// NewDisclosureHandler builds a new handler.
func NewDisclosureHandler(service disclosureService) *DisclosureHandler {
	return &DisclosureHandler{service: service}
}

// ProveAge godoc
// @Summary Attest that a subject meets an age threshold
// @Tags Disclosure
// @Accept json
// @Produce json
// @Param payload body dto.AgeProofRequest true "Proof request"
// @Success 200 {object} response.Envelope
// @Router /disclosure/age-proofs [post]
func (h *DisclosureHandler) ProveAge(c *gin.Context) {
	var req dto.AgeProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid proof request"))
		return
	}
	proof, err := h.service.ProveAgeAtLeast(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, proof, nil)
}

// VerifyAge godoc
// @Summary Verify a previously issued age attestation
// @Tags Disclosure
// @Accept json
// @Produce json
// @Param payload body dto.VerifyAgeProofRequest true "Verification request"
// @Success 200 {object} response.Envelope
// @Router /disclosure/age-proofs/verify [post]
func (h *DisclosureHandler) VerifyAge(c *gin.Context) {
	var req dto.VerifyAgeProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid verification request"))
		return
	}
	result, err := h.service.Verify(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
