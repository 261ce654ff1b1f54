package finance

import (
	"time"

	"github.com/erp/puntoventa/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest represents a request to register a payment for an order
type CreatePaymentRequest struct {
	OrderID     uuid.UUID       `json:"order_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate *time.Time      `json:"payment_date"`
	Method      string          `json:"method" binding:"omitempty,oneof=CASH CARD BANK_TRANSFER OTHER"`
	Reference   string          `json:"reference" binding:"max=100"`
}

// UpdatePaymentRequest changes a draft payment
type UpdatePaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate *time.Time      `json:"payment_date"`
	Method      string          `json:"method" binding:"omitempty,oneof=CASH CARD BANK_TRANSFER OTHER"`
	Reference   string          `json:"reference" binding:"max=100"`
}

// CancelPaymentRequest represents a request to cancel a payment
type CancelPaymentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// PaymentListFilter represents filter options for the payment list
type PaymentListFilter struct {
	Search   string `form:"search"`
	OrderID  string `form:"order_id" binding:"omitempty,uuid"`
	State    string `form:"state" binding:"omitempty,oneof=draft posted cancelled"`
	Method   string `form:"method" binding:"omitempty,oneof=CASH CARD BANK_TRANSFER OTHER"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID           uuid.UUID       `json:"id"`
	TenantID     uuid.UUID       `json:"tenant_id"`
	Name         string          `json:"name"`
	OrderID      uuid.UUID       `json:"order_id"`
	OrderNumber  string          `json:"order_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Amount       decimal.Decimal `json:"amount"`
	PaymentDate  *time.Time      `json:"payment_date,omitempty"`
	Method       string          `json:"method"`
	Reference    string          `json:"reference,omitempty"`
	State        string          `json:"state"`
	PostedAt     *time.Time      `json:"posted_at,omitempty"`
	CancelledAt  *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason string          `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// ToPaymentResponse converts a domain Payment to PaymentResponse
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:           p.ID,
		TenantID:     p.TenantID,
		Name:         p.Name,
		OrderID:      p.OrderID,
		OrderNumber:  p.OrderNumber,
		CustomerID:   p.CustomerID,
		CustomerName: p.CustomerName,
		Amount:       p.Amount,
		PaymentDate:  p.PaymentDate,
		Method:       p.Method.String(),
		Reference:    p.Reference,
		State:        p.State.String(),
		PostedAt:     p.PostedAt,
		CancelledAt:  p.CancelledAt,
		CancelReason: p.CancelReason,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
}

// ToPaymentResponses converts a slice of payments
func ToPaymentResponses(payments []finance.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}
