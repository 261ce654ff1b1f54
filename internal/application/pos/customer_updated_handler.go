package pos

import (
	"context"
	"fmt"

	"github.com/erp/puntoventa/internal/domain/partner"
	"github.com/erp/puntoventa/internal/domain/pos"
	"github.com/erp/puntoventa/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerUpdatedHandler refreshes the denormalized customer name on orders
type CustomerUpdatedHandler struct {
	orderRepo pos.OrderRepository
	logger    *zap.Logger
}

// NewCustomerUpdatedHandler creates a new CustomerUpdatedHandler
func NewCustomerUpdatedHandler(orderRepo pos.OrderRepository, logger *zap.Logger) *CustomerUpdatedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerUpdatedHandler{orderRepo: orderRepo, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *CustomerUpdatedHandler) EventTypes() []string {
	return []string{partner.EventTypeCustomerUpdated}
}

// Handle processes a CustomerUpdatedEvent
func (h *CustomerUpdatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	updated, ok := event.(*partner.CustomerUpdatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			partner.EventTypeCustomerUpdated, event.EventType())
	}

	orders, err := h.orderRepo.FindByCustomer(ctx, event.TenantID(), updated.CustomerID)
	if err != nil {
		return fmt.Errorf("find orders for customer %s: %w", updated.CustomerID, err)
	}

	count := 0
	for i := range orders {
		order := &orders[i]
		if order.CustomerName == updated.Name {
			continue
		}
		if err := order.SetCustomer(updated.CustomerID, updated.Name); err != nil {
			return err
		}
		if err := h.orderRepo.SaveWithLock(ctx, order); err != nil {
			return fmt.Errorf("save order %s: %w", order.ID, err)
		}
		count++
	}

	h.logger.Debug("customer name propagated to orders",
		zap.String("customer_id", updated.CustomerID.String()),
		zap.Int("orders_updated", count),
	)
	return nil
}
