package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/civisuite/vitals-ledger/internal/ledger"
	"github.com/civisuite/vitals-ledger/internal/service"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
	"github.com/civisuite/vitals-ledger/pkg/response"
)

type extractService interface {
	Certificate(ctx context.Context, source ledger.Source, recordID string) (*service.ExtractResult, error)
	Roster(ctx context.Context, source ledger.Source, districtID string) (*service.ExtractResult, error)
	Open(token string) (*os.File, string, error)
}

// ExtractHandler exposes certified extract endpoints.
type ExtractHandler struct {
	service extractService
}

// NewExtractHandler builds a new handler.
func NewExtractHandler(service extractService) *ExtractHandler {
	return &ExtractHandler{service: service}
}

// Certificate godoc
// @Summary Generate a certificate PDF extract for a record
// @Tags Extracts
// @Produce json
// @Param id path string true "Record identifier"
// @Success 201 {object} response.Envelope
// @Router /extracts/certificates/{id} [post]
func (h *ExtractHandler) Certificate(c *gin.Context) {
	result, err := h.service.Certificate(c.Request.Context(), sourceFromQuery(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Roster godoc
// @Summary Generate a district roster CSV extract
// @Tags Extracts
// @Produce json
// @Param id path string true "District identifier"
// @Success 201 {object} response.Envelope
// @Router /extracts/rosters/{id} [post]
func (h *ExtractHandler) Roster(c *gin.Context) {
	result, err := h.service.Roster(c.Request.Context(), sourceFromQuery(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download a generated extract by signed token
// @Tags Extracts
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /extracts/download [get]
func (h *ExtractHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, contentType, err := h.service.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stat extract file"))
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(file.Name()))
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
