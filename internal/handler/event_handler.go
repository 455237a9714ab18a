package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/civisuite/vitals-ledger/internal/models"
	"github.com/civisuite/vitals-ledger/pkg/response"
)

type eventJournal interface {
	Events(after uint64, limit int) []models.Event
}

// EventHandler serves the committed event journal to replication consumers.
type EventHandler struct {
	journal eventJournal
}

// NewEventHandler builds a new handler.
func NewEventHandler(journal eventJournal) *EventHandler {
	return &EventHandler{journal: journal}
}

// List godoc
// @Summary List committed events
// @Tags Events
// @Produce json
// @Param after query int false "Return events with sequence greater than this"
// @Param limit query int false "Maximum events to return"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	after, _ := strconv.ParseUint(c.DefaultQuery("after", "0"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	events := h.journal.Events(after, limit)
	response.JSON(c, http.StatusOK, events, nil)
}
