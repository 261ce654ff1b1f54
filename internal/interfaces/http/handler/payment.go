package handler

import (
	financeapp "github.com/erp/puntoventa/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *financeapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *financeapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// Create godoc
// @ID           createPayment
// @Summary      Register a payment
// @Description  Create a draft payment against a sale. The amount must be greater than zero.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        request body financeapp.CreatePaymentRequest true "Payment creation request"
// @Success      201 {object} APIResponse[financeapp.PaymentResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Router       /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req financeapp.CreatePaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	payment, err := h.paymentService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, payment)
}

// GetByID godoc
// @ID           getPaymentById
// @Summary      Get payment by ID
// @Tags         payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[financeapp.PaymentResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /payments/{id} [get]
func (h *PaymentHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathID(c, "id", "payment")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetByID(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// List godoc
// @ID           listPayments
// @Summary      List payments
// @Tags         payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        search query string false "Search by name or reference"
// @Param        order_id query string false "Order ID" format(uuid)
// @Param        state query string false "State" Enums(draft, posted, cancelled)
// @Param        method query string false "Method" Enums(CASH, CARD, BANK_TRANSFER, OTHER)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Sort field" default(created_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]financeapp.PaymentResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var filter financeapp.PaymentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// ListByOrder godoc
// @ID           listOrderPayments
// @Summary      List the payments of a sale
// @Tags         orders
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[[]financeapp.PaymentResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Router       /orders/{id}/payments [get]
func (h *PaymentHandler) ListByOrder(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListByOrder(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payments)
}

// Update godoc
// @ID           updatePayment
// @Summary      Update a draft payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body financeapp.UpdatePaymentRequest true "Payment update request"
// @Success      200 {object} APIResponse[financeapp.PaymentResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Router       /payments/{id} [put]
func (h *PaymentHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathID(c, "id", "payment")
	if !ok {
		return
	}

	var req financeapp.UpdatePaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	payment, err := h.paymentService.Update(c.Request.Context(), tenantID, paymentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// Post godoc
// @ID           postPayment
// @Summary      Post a payment
// @Description  Validate the amount, assign the payment name and run the post hooks
// @Tags         payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[financeapp.PaymentResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      503 {object} dto.ErrorResponse
// @Router       /payments/{id}/post [post]
func (h *PaymentHandler) Post(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathID(c, "id", "payment")
	if !ok {
		return
	}

	payment, err := h.paymentService.Post(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// Cancel godoc
// @ID           cancelPayment
// @Summary      Cancel a payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body financeapp.CancelPaymentRequest false "Cancellation reason"
// @Success      200 {object} APIResponse[financeapp.PaymentResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Router       /payments/{id}/cancel [post]
func (h *PaymentHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathID(c, "id", "payment")
	if !ok {
		return
	}

	var req financeapp.CancelPaymentRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	payment, err := h.paymentService.Cancel(c.Request.Context(), tenantID, paymentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// Delete godoc
// @ID           deletePayment
// @Summary      Delete a draft payment
// @Tags         payments
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Payment ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Router       /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathID(c, "id", "payment")
	if !ok {
		return
	}

	if err := h.paymentService.Delete(c.Request.Context(), tenantID, paymentID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
