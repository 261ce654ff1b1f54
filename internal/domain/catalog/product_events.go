package catalog

import (
	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeProduct = "Product"
	AggregateTypeTax     = "Tax"
)

// Event type constants
const (
	EventTypeProductCreated        = "ProductCreated"
	EventTypeProductPricingChanged = "ProductPricingChanged"
	EventTypeTaxAmountChanged      = "TaxAmountChanged"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID       `json:"product_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	ListPrice decimal.Decimal `json:"list_price"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID, product.TenantID),
		ProductID:       product.ID,
		Code:            product.Code,
		Name:            product.Name,
		ListPrice:       product.ListPrice,
	}
}

// ProductPricingChangedEvent is published when the list price or default taxes change
type ProductPricingChangedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID       `json:"product_id"`
	ListPrice decimal.Decimal `json:"list_price"`
	TaxIDs    []uuid.UUID     `json:"tax_ids"`
}

// NewProductPricingChangedEvent creates a new ProductPricingChangedEvent
func NewProductPricingChangedEvent(product *Product) *ProductPricingChangedEvent {
	taxIDs := make([]uuid.UUID, len(product.TaxIDs))
	copy(taxIDs, product.TaxIDs)
	return &ProductPricingChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductPricingChanged, AggregateTypeProduct, product.ID, product.TenantID),
		ProductID:       product.ID,
		ListPrice:       product.ListPrice,
		TaxIDs:          taxIDs,
	}
}

// TaxAmountChangedEvent is published when a tax amount changes
type TaxAmountChangedEvent struct {
	shared.BaseDomainEvent
	TaxID  uuid.UUID       `json:"tax_id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// NewTaxAmountChangedEvent creates a new TaxAmountChangedEvent
func NewTaxAmountChangedEvent(tax *Tax) *TaxAmountChangedEvent {
	return &TaxAmountChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTaxAmountChanged, AggregateTypeTax, tax.ID, tax.TenantID),
		TaxID:           tax.ID,
		Name:            tax.Name,
		Amount:          tax.Amount,
	}
}
