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

type birthService interface {
	Request(ctx context.Context, actor models.Actor, req dto.RequestBirthRequest) (*models.BirthCertificate, error)
	Issue(ctx context.Context, actor models.Actor, id string, req dto.IssueBirthRequest) (*models.BirthCertificate, error)
	Amend(ctx context.Context, actor models.Actor, id string, req dto.AmendBirthRequest) (*models.BirthCertificate, error)
	Get(ctx context.Context, source ledger.Source, id string) (*models.BirthCertificate, error)
	List(ctx context.Context, source ledger.Source) ([]models.BirthCertificate, error)
}

type proofInvalidator interface {
	InvalidateCertificate(ctx context.Context, birthCertificateID string) error
}

// BirthHandler exposes birth certificate endpoints.
type BirthHandler struct {
	service birthService
	proofs  proofInvalidator
}

// NewBirthHandler builds a new handler. proofs may be nil when disclosure is
// not wired.
func NewBirthHandler(service birthService, proofs proofInvalidator) *BirthHandler {
	return &BirthHandler{service: service, proofs: proofs}
}

// Request godoc
// @Summary File a birth certificate
// @Tags Birth
// @Accept json
// @Produce json
// @Param payload body dto.RequestBirthRequest true "Birth payload"
// @Success 201 {object} response.Envelope
// @Router /births [post]
func (h *BirthHandler) Request(c *gin.Context) {
	var req dto.RequestBirthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid birth payload"))
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
// @Summary Issue a requested birth certificate
// @Tags Birth
// @Accept json
// @Produce json
// @Param id path string true "Certificate identifier"
// @Param payload body dto.IssueBirthRequest false "Optional subject link"
// @Success 200 {object} response.Envelope
// @Router /births/{id}/issue [post]
func (h *BirthHandler) Issue(c *gin.Context) {
	var req dto.IssueBirthRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid issue payload"))
			return
		}
	}
	cert, err := h.service.Issue(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cert, nil)
}

// Amend godoc
// @Summary Amend an issued birth certificate
// @Tags Birth
// @Accept json
// @Produce json
// @Param id path string true "Certificate identifier"
// @Param payload body dto.AmendBirthRequest true "Amendment payload"
// @Success 200 {object} response.Envelope
// @Router /births/{id} [patch]
func (h *BirthHandler) Amend(c *gin.Context) {
	var req dto.AmendBirthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid amendment payload"))
		return
	}
	cert, err := h.service.Amend(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.proofs != nil {
		// Cached age proofs were derived from the pre-amendment content.
		_ = h.proofs.InvalidateCertificate(c.Request.Context(), cert.ID)
	}
	response.JSON(c, http.StatusOK, cert, nil)
}

// Get godoc
// @Summary Get a birth certificate
// @Tags Birth
// @Produce json
// @Param id path string true "Certificate identifier"
// @Success 200 {object} response.Envelope
// @Router /births/{id} [get]
func (h *BirthHandler) Get(c *gin.Context) {
	cert, err := h.service.Get(c.Request.Context(), sourceFromQuery(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cert, nil)
}

// List godoc
// @Summary List birth certificates
// @Tags Birth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /births [get]
func (h *BirthHandler) List(c *gin.Context) {
	certs, err := h.service.List(c.Request.Context(), sourceFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, certs, nil)
}
