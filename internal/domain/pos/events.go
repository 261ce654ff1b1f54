package pos

import (
	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOrder = "PosOrder"

// Event type constants
const (
	EventTypeOrderCreated       = "OrderCreated"
	EventTypeOrderDeleted       = "OrderDeleted"
	EventTypeOrderSequenceReset = "OrderSequenceReset"
)

// OrderCreatedEvent is published once an order is numbered and stored
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID       `json:"order_id"`
	FolioNumber  string          `json:"folio_number"`
	OrderNumber  string          `json:"order_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	LineCount    int             `json:"line_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		FolioNumber:     order.FolioNumber,
		OrderNumber:     order.OrderNumber,
		CustomerID:      order.CustomerID,
		CustomerName:    order.CustomerName,
		LineCount:       len(order.Lines),
		TotalAmount:     order.TotalAmount,
	}
}

// OrderDeletedEvent is published when an order and its lines are deleted
type OrderDeletedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
}

// NewOrderDeletedEvent creates a new OrderDeletedEvent
func NewOrderDeletedEvent(order *Order) *OrderDeletedEvent {
	return &OrderDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDeleted, AggregateTypeOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
	}
}

// OrderSequenceResetEvent is published when deleting the last numbered order
// restarts the order counter at 1
type OrderSequenceResetEvent struct {
	shared.BaseDomainEvent
	DeletedOrderID     uuid.UUID `json:"deleted_order_id"`
	DeletedOrderNumber string    `json:"deleted_order_number"`
}

// NewOrderSequenceResetEvent creates a new OrderSequenceResetEvent
func NewOrderSequenceResetEvent(order *Order) *OrderSequenceResetEvent {
	return &OrderSequenceResetEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeOrderSequenceReset, AggregateTypeOrder, order.ID, order.TenantID),
		DeletedOrderID:     order.ID,
		DeletedOrderNumber: order.OrderNumber,
	}
}
