package handler

import (
	sequenceapp "github.com/erp/puntoventa/internal/application/sequence"
	"github.com/gin-gonic/gin"
)

// SequenceHandler exposes the numbering sequences
type SequenceHandler struct {
	BaseHandler
	sequenceService *sequenceapp.SequenceService
}

// NewSequenceHandler creates a new SequenceHandler
func NewSequenceHandler(sequenceService *sequenceapp.SequenceService) *SequenceHandler {
	return &SequenceHandler{
		sequenceService: sequenceService,
	}
}

// List godoc
// @ID           listSequences
// @Summary      List numbering sequences
// @Description  Lists the folio, order and payment sequences with their next value
// @Tags         sequences
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Success      200 {object} APIResponse[[]sequenceapp.SequenceResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Router       /sequences [get]
func (h *SequenceHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	sequences, err := h.sequenceService.List(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sequences)
}

// Get godoc
// @ID           getSequence
// @Summary      Get a sequence by code
// @Tags         sequences
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        code path string true "Sequence code" example(punto.venta.order)
// @Success      200 {object} APIResponse[sequenceapp.SequenceResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Router       /sequences/{code} [get]
func (h *SequenceHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	seq, err := h.sequenceService.Get(c.Request.Context(), tenantID, c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, seq)
}

// Reset godoc
// @ID           resetSequence
// @Summary      Reset a sequence
// @Description  The next number drawn from the sequence becomes 1
// @Tags         sequences
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        code path string true "Sequence code" example(punto.venta.order)
// @Param        request body sequenceapp.ResetSequenceRequest false "Reset reason"
// @Success      200 {object} APIResponse[sequenceapp.ResetSequenceResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Failure      503 {object} dto.ErrorResponse
// @Router       /sequences/{code}/reset [post]
func (h *SequenceHandler) Reset(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req sequenceapp.ResetSequenceRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	result, err := h.sequenceService.Reset(c.Request.Context(), tenantID, c.Param("code"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
