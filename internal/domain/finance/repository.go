package finance

import (
	"context"

	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByIDForTenant finds a payment by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// FindAllForTenant lists payments; Filters may hold "order_id", "state" and "method"
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Payment, error)

	// CountForTenant counts payments matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// FindByOrder lists every payment of an order
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]Payment, error)

	// CountByOrder counts payments of an order, cancelled ones included
	CountByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (int64, error)

	// CountByOrders counts payments across several orders
	CountByOrders(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID) (int64, error)

	// Save creates a payment
	Save(ctx context.Context, payment *Payment) error

	// SaveWithLock updates a payment, checking the version
	SaveWithLock(ctx context.Context, payment *Payment) error

	// DeleteForTenant deletes a payment
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
