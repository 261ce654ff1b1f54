package finance

import (
	"context"

	"github.com/erp/puntoventa/internal/domain/finance"
	"go.uber.org/zap"
)

// OrderPaidHook is the post hook reserved for settling the paid order.
// Orders carry no paid state yet, so it only records the call.
type OrderPaidHook struct {
	logger *zap.Logger
}

// NewOrderPaidHook creates a new OrderPaidHook
func NewOrderPaidHook(logger *zap.Logger) *OrderPaidHook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderPaidHook{logger: logger}
}

// AfterPost implements finance.PostHook
func (h *OrderPaidHook) AfterPost(_ context.Context, payment *finance.Payment) error {
	h.logger.Debug("payment posted for order",
		zap.String("payment", payment.Name),
		zap.String("order_id", payment.OrderID.String()),
	)
	return nil
}

var _ finance.PostHook = (*OrderPaidHook)(nil)
