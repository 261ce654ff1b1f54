package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentState represents the lifecycle state of a payment
type PaymentState string

const (
	PaymentStateDraft     PaymentState = "draft"
	PaymentStatePosted    PaymentState = "posted"
	PaymentStateCancelled PaymentState = "cancelled"
)

// IsValid checks if the state is valid
func (s PaymentState) IsValid() bool {
	switch s {
	case PaymentStateDraft, PaymentStatePosted, PaymentStateCancelled:
		return true
	}
	return false
}

// String returns the string representation of PaymentState
func (s PaymentState) String() string {
	return string(s)
}

// PaymentMethod represents how the customer paid
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// ErrPaymentAmountNotPositive is the user-facing rejection of a non-positive amount
var ErrPaymentAmountNotPositive = shared.NewDomainError("VALIDATION_ERROR", "El monto del pago debe ser mayor que cero.")

// ErrPaymentAmountScale is returned when the amount has more decimals than
// the amount column stores
var ErrPaymentAmountScale = shared.NewDomainError("VALIDATION_ERROR", "El monto del pago admite como máximo 4 decimales.")

// ErrPaymentNotFound is returned when a payment does not exist
var ErrPaymentNotFound = shared.NewDomainError("NOT_FOUND", "Payment not found")

// OrderRef is the order data a payment keeps
type OrderRef struct {
	ID           uuid.UUID
	Number       string
	CustomerID   uuid.UUID
	CustomerName string
}

// Payment is a payment received against a point-of-sale order
type Payment struct {
	shared.TenantAggregateRoot
	Name         string // issued from the payment sequence when posted
	OrderID      uuid.UUID
	OrderNumber  string
	CustomerID   uuid.UUID
	CustomerName string
	Amount       decimal.Decimal
	PaymentDate  *time.Time
	Method       PaymentMethod
	Reference    string
	State        PaymentState
	PostedAt     *time.Time
	CancelledAt  *time.Time
	CancelReason string
}

// NewPayment creates a draft payment for an order
func NewPayment(tenantID uuid.UUID, order OrderRef, amount decimal.Decimal, method PaymentMethod, paymentDate *time.Time) (*Payment, error) {
	if method == "" {
		method = PaymentMethodCash
	}

	payment := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderID:             order.ID,
		OrderNumber:         order.Number,
		CustomerID:          order.CustomerID,
		CustomerName:        order.CustomerName,
		Amount:              amount,
		PaymentDate:         normalizeDate(paymentDate),
		Method:              method,
		State:               PaymentStateDraft,
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	return payment, nil
}

// Validate checks the invariants that hold on every write
func (p *Payment) Validate() error {
	if p.OrderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Payment must reference an order")
	}
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrPaymentAmountNotPositive
	}
	if !shared.FitsAmountScale(p.Amount) {
		return ErrPaymentAmountScale
	}
	if !p.Method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Invalid payment method: %s", p.Method))
	}
	if len(p.Reference) > 100 {
		return shared.NewDomainError("INVALID_REFERENCE", "Reference cannot exceed 100 characters")
	}
	return nil
}

// Update changes the editable fields of a draft payment. Nothing changes
// when validation fails.
func (p *Payment) Update(amount decimal.Decimal, paymentDate *time.Time, method PaymentMethod, reference string) error {
	if !p.IsDraft() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot update payment in %s state", p.State))
	}

	candidate := Payment{
		OrderID:     p.OrderID,
		Amount:      amount,
		PaymentDate: normalizeDate(paymentDate),
		Method:      p.Method,
		Reference:   strings.TrimSpace(reference),
	}
	if method != "" {
		candidate.Method = method
	}
	if err := candidate.Validate(); err != nil {
		return err
	}

	p.Amount = candidate.Amount
	p.PaymentDate = candidate.PaymentDate
	p.Method = candidate.Method
	p.Reference = candidate.Reference
	p.UpdatedAt = time.Now()
	return nil
}

// Post confirms a draft payment under the given name
func (p *Payment) Post(name string) error {
	if !p.IsDraft() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot post payment in %s state", p.State))
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Payment name cannot be empty")
	}

	now := time.Now()
	p.Name = name
	p.State = PaymentStatePosted
	p.PostedAt = &now
	if p.PaymentDate == nil {
		p.PaymentDate = normalizeDate(&now)
	}
	p.UpdatedAt = now

	p.AddDomainEvent(NewPaymentPostedEvent(p))
	return nil
}

// Cancel cancels a draft or posted payment
func (p *Payment) Cancel(reason string) error {
	if p.IsCancelled() {
		return shared.NewDomainError("INVALID_STATE", "Payment is already cancelled")
	}
	if len(reason) > 500 {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason cannot exceed 500 characters")
	}

	now := time.Now()
	wasPosted := p.IsPosted()
	p.State = PaymentStateCancelled
	p.CancelledAt = &now
	p.CancelReason = reason
	p.UpdatedAt = now

	p.AddDomainEvent(NewPaymentCancelledEvent(p, wasPosted))
	return nil
}

// IsDraft returns true if the payment is a draft
func (p *Payment) IsDraft() bool {
	return p.State == PaymentStateDraft
}

// IsPosted returns true if the payment is posted
func (p *Payment) IsPosted() bool {
	return p.State == PaymentStatePosted
}

// IsCancelled returns true if the payment is cancelled
func (p *Payment) IsCancelled() bool {
	return p.State == PaymentStateCancelled
}

// CanDelete reports whether the payment may be deleted; only drafts can
func (p *Payment) CanDelete() bool {
	return p.IsDraft()
}

// payment_date is a calendar date
func normalizeDate(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
