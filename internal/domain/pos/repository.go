package pos

import (
	"context"

	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
)

// Errors
var (
	ErrOrderNotFound        = shared.NewDomainError("NOT_FOUND", "Order not found")
	ErrOrderAlreadyNumbered = shared.NewDomainError("INVALID_STATE", "Order numbers are already assigned")
	ErrOrderHasPayments     = shared.NewDomainError("INVALID_STATE", "Order has payments and cannot be deleted")
)

// OrderRepository defines the interface for order persistence. Lines are
// loaded and saved with their order.
type OrderRepository interface {
	// FindByIDForTenant finds an order by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)

	// FindByIDsForTenant finds orders by IDs; every ID must exist
	FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Order, error)

	// FindAllForTenant lists orders; Search matches order number, folio and customer name
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Order, error)

	// CountForTenant counts orders matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// FindByProduct finds orders holding at least one line of the product
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]Order, error)

	// FindByTax finds orders holding at least one line carrying the tax
	FindByTax(ctx context.Context, tenantID, taxID uuid.UUID) ([]Order, error)

	// FindByCustomer finds orders sold to the customer
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]Order, error)

	// CountWithOtherOrderNumber counts orders other than excludeID whose order
	// number differs from orderNumber. Orders without a number are counted.
	CountWithOtherOrderNumber(ctx context.Context, tenantID, excludeID uuid.UUID, orderNumber string) (int64, error)

	// Save creates an order with its lines
	Save(ctx context.Context, order *Order) error

	// SaveWithLock updates an order and replaces its lines, checking the version
	SaveWithLock(ctx context.Context, order *Order) error

	// DeleteForTenant deletes an order and its lines
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// ShouldResetOrderSequence reports whether deleting an order leaves no other
// order with a different number, which restarts the order counter.
func ShouldResetOrderSequence(otherOrders int64) bool {
	return otherOrders == 0
}
