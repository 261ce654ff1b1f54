package handler

import (
	catalogapp "github.com/erp/puntoventa/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// TaxHandler handles tax endpoints
type TaxHandler struct {
	BaseHandler
	taxService *catalogapp.TaxService
}

// NewTaxHandler creates a new TaxHandler
func NewTaxHandler(taxService *catalogapp.TaxService) *TaxHandler {
	return &TaxHandler{
		taxService: taxService,
	}
}

// Create godoc
// @ID           createTax
// @Summary      Create a tax
// @Tags         taxes
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        request body catalogapp.CreateTaxRequest true "Tax creation request"
// @Success      201 {object} APIResponse[catalogapp.TaxResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Router       /catalog/taxes [post]
func (h *TaxHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req catalogapp.CreateTaxRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tax, err := h.taxService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, tax)
}

// GetByID godoc
// @ID           getTaxById
// @Summary      Get tax by ID
// @Tags         taxes
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Tax ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.TaxResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Router       /catalog/taxes/{id} [get]
func (h *TaxHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	taxID, ok := h.pathID(c, "id", "tax")
	if !ok {
		return
	}

	tax, err := h.taxService.GetByID(c.Request.Context(), tenantID, taxID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tax)
}

// List godoc
// @ID           listTaxes
// @Summary      List taxes
// @Tags         taxes
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        search query string false "Search by name"
// @Param        active query bool false "Filter by active flag"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]catalogapp.TaxResponse]
// @Router       /catalog/taxes [get]
func (h *TaxHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var filter catalogapp.TaxListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	taxes, total, err := h.taxService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, taxes, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateTax
// @Summary      Update a tax
// @Description  An amount change recomputes the sales carrying the tax
// @Tags         taxes
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Tax ID" format(uuid)
// @Param        request body catalogapp.UpdateTaxRequest true "Tax update request"
// @Success      200 {object} APIResponse[catalogapp.TaxResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /catalog/taxes/{id} [put]
func (h *TaxHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	taxID, ok := h.pathID(c, "id", "tax")
	if !ok {
		return
	}

	var req catalogapp.UpdateTaxRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tax, err := h.taxService.Update(c.Request.Context(), tenantID, taxID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tax)
}

// Delete godoc
// @ID           deleteTax
// @Summary      Delete a tax
// @Tags         taxes
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Tax ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Router       /catalog/taxes/{id} [delete]
func (h *TaxHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	taxID, ok := h.pathID(c, "id", "tax")
	if !ok {
		return
	}

	if err := h.taxService.Delete(c.Request.Context(), tenantID, taxID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
