package catalog

import (
	"strings"
	"time"

	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item. Orders read its list price and default taxes
// but never own it.
type Product struct {
	shared.TenantAggregateRoot
	Code      string
	Name      string
	ListPrice decimal.Decimal
	TaxIDs    []uuid.UUID
	Active    bool
}

// NewProduct creates a new active product
func NewProduct(tenantID uuid.UUID, code, name string, listPrice decimal.Decimal) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validateListPrice(listPrice); err != nil {
		return nil, err
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		ListPrice:           listPrice,
		TaxIDs:              make([]uuid.UUID, 0),
		Active:              true,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Rename changes the display name
func (p *Product) Rename(name string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(name)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetListPrice changes the list price that order lines mirror
func (p *Product) SetListPrice(price decimal.Decimal) error {
	if err := validateListPrice(price); err != nil {
		return err
	}
	if price.Equal(p.ListPrice) {
		return nil
	}
	p.ListPrice = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductPricingChangedEvent(p))
	return nil
}

// SetTaxes replaces the product's default taxes
func (p *Product) SetTaxes(taxIDs []uuid.UUID) {
	unique := dedupeIDs(taxIDs)
	if sameIDs(p.TaxIDs, unique) {
		return
	}
	p.TaxIDs = unique
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductPricingChangedEvent(p))
}

// Activate makes the product available for new lines
func (p *Product) Activate() {
	if p.Active {
		return
	}
	p.Active = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Deactivate hides the product from new lines; existing lines keep referencing it
func (p *Product) Deactivate() {
	if !p.Active {
		return
	}
	p.Active = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

func validateProductCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	return nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func sameIDs(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[uuid.UUID]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if !set[id] {
			return false
		}
	}
	return true
}

func validateListPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "List price cannot be negative")
	}
	if !shared.FitsAmountScale(price) {
		return shared.NewDomainError("INVALID_PRICE", "List price cannot have more than 4 decimal places")
	}
	return nil
}
