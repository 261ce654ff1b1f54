package pos

import (
	"context"
	"fmt"

	"github.com/erp/puntoventa/internal/domain/catalog"
	"github.com/erp/puntoventa/internal/domain/pos"
	"github.com/erp/puntoventa/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductPricingHandler keeps order lines in step with product pricing.
// Lines mirror the list price, and lines without overridden taxes follow
// the product's default taxes.
type ProductPricingHandler struct {
	orderRepo pos.OrderRepository
	taxRepo   catalog.TaxRepository
	logger    *zap.Logger
}

// NewProductPricingHandler creates a new ProductPricingHandler
func NewProductPricingHandler(orderRepo pos.OrderRepository, taxRepo catalog.TaxRepository, logger *zap.Logger) *ProductPricingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductPricingHandler{
		orderRepo: orderRepo,
		taxRepo:   taxRepo,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ProductPricingHandler) EventTypes() []string {
	return []string{catalog.EventTypeProductPricingChanged}
}

// Handle processes a ProductPricingChangedEvent
func (h *ProductPricingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*catalog.ProductPricingChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeProductPricingChanged, event.EventType())
	}
	tenantID := event.TenantID()

	taxes := []pos.LineTax{}
	if len(changed.TaxIDs) > 0 {
		found, err := h.taxRepo.FindByIDs(ctx, tenantID, changed.TaxIDs)
		if err != nil {
			return fmt.Errorf("load product taxes: %w", err)
		}
		taxes = LineTaxesFor(changed.TaxIDs, found)
	}

	orders, err := h.orderRepo.FindByProduct(ctx, tenantID, changed.ProductID)
	if err != nil {
		return fmt.Errorf("find orders for product %s: %w", changed.ProductID, err)
	}

	updated := 0
	for i := range orders {
		order := &orders[i]
		if !order.ApplyProductPricing(changed.ProductID, changed.ListPrice, taxes) {
			continue
		}
		if err := h.orderRepo.SaveWithLock(ctx, order); err != nil {
			return fmt.Errorf("save order %s: %w", order.ID, err)
		}
		updated++
	}

	h.logger.Info("product pricing applied to orders",
		zap.String("tenant_id", tenantID.String()),
		zap.String("product_id", changed.ProductID.String()),
		zap.String("list_price", changed.ListPrice.String()),
		zap.Int("orders_updated", updated),
	)
	return nil
}

// TaxAmountHandler refreshes the tax snapshots on order lines when a tax
// amount changes
type TaxAmountHandler struct {
	orderRepo pos.OrderRepository
	logger    *zap.Logger
}

// NewTaxAmountHandler creates a new TaxAmountHandler
func NewTaxAmountHandler(orderRepo pos.OrderRepository, logger *zap.Logger) *TaxAmountHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaxAmountHandler{orderRepo: orderRepo, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *TaxAmountHandler) EventTypes() []string {
	return []string{catalog.EventTypeTaxAmountChanged}
}

// Handle processes a TaxAmountChangedEvent
func (h *TaxAmountHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*catalog.TaxAmountChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeTaxAmountChanged, event.EventType())
	}

	orders, err := h.orderRepo.FindByTax(ctx, event.TenantID(), changed.TaxID)
	if err != nil {
		return fmt.Errorf("find orders for tax %s: %w", changed.TaxID, err)
	}

	updated := 0
	for i := range orders {
		order := &orders[i]
		if !order.ApplyTaxAmount(changed.TaxID, changed.Name, changed.Amount) {
			continue
		}
		if err := h.orderRepo.SaveWithLock(ctx, order); err != nil {
			return fmt.Errorf("save order %s: %w", order.ID, err)
		}
		updated++
	}

	h.logger.Info("tax amount applied to orders",
		zap.String("tax_id", changed.TaxID.String()),
		zap.String("amount", changed.Amount.String()),
		zap.Int("orders_updated", updated),
	)
	return nil
}
