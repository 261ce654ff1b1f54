package finance

import (
	"time"

	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypePayment is the aggregate type name for payment events
const AggregateTypePayment = "Payment"

// Event type constants
const (
	EventTypePaymentPosted    = "PaymentPosted"
	EventTypePaymentCancelled = "PaymentCancelled"
)

// PaymentPostedEvent is raised when a payment is posted
type PaymentPostedEvent struct {
	shared.BaseDomainEvent
	PaymentID   uuid.UUID       `json:"payment_id"`
	Name        string          `json:"name"`
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Amount      decimal.Decimal `json:"amount"`
	Method      PaymentMethod   `json:"method"`
	PostedAt    time.Time       `json:"posted_at"`
}

// EventType returns the event type name
func (e *PaymentPostedEvent) EventType() string {
	return EventTypePaymentPosted
}

// NewPaymentPostedEvent creates a new PaymentPostedEvent
func NewPaymentPostedEvent(p *Payment) *PaymentPostedEvent {
	var postedAt time.Time
	if p.PostedAt != nil {
		postedAt = *p.PostedAt
	}
	return &PaymentPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentPosted, AggregateTypePayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		Name:            p.Name,
		OrderID:         p.OrderID,
		OrderNumber:     p.OrderNumber,
		Amount:          p.Amount,
		Method:          p.Method,
		PostedAt:        postedAt,
	}
}

// PaymentCancelledEvent is raised when a payment is cancelled
type PaymentCancelledEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	WasPosted bool            `json:"was_posted"`
	Reason    string          `json:"reason"`
}

// EventType returns the event type name
func (e *PaymentCancelledEvent) EventType() string {
	return EventTypePaymentCancelled
}

// NewPaymentCancelledEvent creates a new PaymentCancelledEvent
func NewPaymentCancelledEvent(p *Payment, wasPosted bool) *PaymentCancelledEvent {
	return &PaymentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCancelled, AggregateTypePayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		OrderID:         p.OrderID,
		Amount:          p.Amount,
		WasPosted:       wasPosted,
		Reason:          p.CancelReason,
	}
}
