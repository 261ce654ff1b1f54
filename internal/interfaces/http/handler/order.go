package handler

import (
	posapp "github.com/erp/puntoventa/internal/application/pos"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles point of sale order endpoints
type OrderHandler struct {
	BaseHandler
	orderService *posapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *posapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// Create godoc
// @ID           createOrder
// @Summary      Create a sale
// @Description  Create a sale. The VENTA number is drawn from the order sequence and totals are computed from the lines.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        request body posapp.CreateOrderRequest true "Order creation request"
// @Success      201 {object} APIResponse[posapp.OrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      503 {object} dto.ErrorResponse
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req posapp.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID godoc
// @ID           getOrderById
// @Summary      Get sale by ID
// @Tags         orders
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[posapp.OrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// List godoc
// @ID           listOrders
// @Summary      List sales
// @Description  Paginated list of sales with optional customer and date filters
// @Tags         orders
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        search query string false "Search by number or notes"
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        date_from query string false "From date (YYYY-MM-DD)"
// @Param        date_to query string false "To date (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Sort field" default(created_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]posapp.OrderListItemResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var filter posapp.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	orders, total, err := h.orderService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateOrder
// @Summary      Update sale header
// @Description  Change customer, date or notes
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body posapp.UpdateOrderRequest true "Order update request"
// @Success      200 {object} APIResponse[posapp.OrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Router       /orders/{id} [put]
func (h *OrderHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	var req posapp.UpdateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Delete godoc
// @ID           deleteOrder
// @Summary      Delete a sale
// @Description  Delete a sale and its lines. Deleting every sale resets the VENTA sequence to 1.
// @Tags         orders
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Order ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Router       /orders/{id} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), tenantID, orderID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// BulkDelete godoc
// @ID           bulkDeleteOrders
// @Summary      Delete several sales
// @Description  Delete up to 100 sales in one transaction
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        request body posapp.BulkDeleteRequest true "Order IDs"
// @Success      200 {object} APIResponse[posapp.BulkDeleteResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /orders/bulk-delete [post]
func (h *OrderHandler) BulkDelete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req posapp.BulkDeleteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.orderService.BulkDelete(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// AddLine godoc
// @ID           addOrderLine
// @Summary      Add a line to a sale
// @Description  Quantity defaults to 1 and taxes default to the product taxes
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body posapp.OrderLineInput true "Line"
// @Success      200 {object} APIResponse[posapp.OrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /orders/{id}/lines [post]
func (h *OrderHandler) AddLine(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	var req posapp.AddLineRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.AddLine(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// UpdateLine godoc
// @ID           updateOrderLine
// @Summary      Change a line quantity
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Order ID" format(uuid)
// @Param        line_id path string true "Line ID" format(uuid)
// @Param        request body posapp.UpdateLineRequest true "New quantity"
// @Success      200 {object} APIResponse[posapp.OrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /orders/{id}/lines/{line_id} [put]
func (h *OrderHandler) UpdateLine(c *gin.Context) {
	tenantID, orderID, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}

	var req posapp.UpdateLineRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateLine(c.Request.Context(), tenantID, orderID, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// SetLineTaxes godoc
// @ID           setOrderLineTaxes
// @Summary      Override the taxes of a line
// @Description  The line keeps these taxes when the product taxes change
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Order ID" format(uuid)
// @Param        line_id path string true "Line ID" format(uuid)
// @Param        request body posapp.SetLineTaxesRequest true "Tax IDs"
// @Success      200 {object} APIResponse[posapp.OrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /orders/{id}/lines/{line_id}/taxes [put]
func (h *OrderHandler) SetLineTaxes(c *gin.Context) {
	tenantID, orderID, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}

	var req posapp.SetLineTaxesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.SetLineTaxes(c.Request.Context(), tenantID, orderID, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// ResetLineTaxes godoc
// @ID           resetOrderLineTaxes
// @Summary      Restore the default taxes of a line
// @Tags         orders
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Order ID" format(uuid)
// @Param        line_id path string true "Line ID" format(uuid)
// @Success      200 {object} APIResponse[posapp.OrderResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Router       /orders/{id}/lines/{line_id}/taxes [delete]
func (h *OrderHandler) ResetLineTaxes(c *gin.Context) {
	tenantID, orderID, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}

	order, err := h.orderService.ResetLineTaxes(c.Request.Context(), tenantID, orderID, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// RemoveLine godoc
// @ID           removeOrderLine
// @Summary      Remove a line from a sale
// @Tags         orders
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Order ID" format(uuid)
// @Param        line_id path string true "Line ID" format(uuid)
// @Success      200 {object} APIResponse[posapp.OrderResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Router       /orders/{id}/lines/{line_id} [delete]
func (h *OrderHandler) RemoveLine(c *gin.Context) {
	tenantID, orderID, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}

	order, err := h.orderService.RemoveLine(c.Request.Context(), tenantID, orderID, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Recompute godoc
// @ID           recomputeOrder
// @Summary      Recompute sale totals
// @Description  Recalculates line subtotals and the sale total from the stored lines
// @Tags         orders
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[posapp.OrderResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Router       /orders/{id}/recompute [post]
func (h *OrderHandler) Recompute(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.Recompute(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// PaymentFormAction godoc
// @ID           getOrderPaymentAction
// @Summary      Payment form action
// @Description  Returns the window action that opens the payment form in a modal, prefilled with this sale
// @Tags         orders
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[pos.WindowAction]
// @Failure      404 {object} dto.ErrorResponse
// @Router       /orders/{id}/payment-action [get]
func (h *OrderHandler) PaymentFormAction(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	action, err := h.orderService.PaymentFormAction(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, action)
}

func (h *OrderHandler) lineParams(c *gin.Context) (tenantID, orderID, lineID uuid.UUID, ok bool) {
	if tenantID, ok = h.tenant(c); !ok {
		return
	}
	if orderID, ok = h.pathID(c, "id", "order"); !ok {
		return
	}
	lineID, ok = h.pathID(c, "line_id", "line")
	return
}
