package catalog

import (
	"strings"
	"time"

	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tax is a named tax amount. Order lines add Amount to their subtotal as a
// literal value; it is not applied as a percentage.
type Tax struct {
	shared.TenantAggregateRoot
	Name   string
	Amount decimal.Decimal
	Active bool
}

// NewTax creates a new active tax
func NewTax(tenantID uuid.UUID, name string, amount decimal.Decimal) (*Tax, error) {
	if err := validateTaxName(name); err != nil {
		return nil, err
	}
	if err := validateTaxAmount(amount); err != nil {
		return nil, err
	}

	tax := &Tax{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		Amount:              amount,
		Active:              true,
	}
	return tax, nil
}

// Update changes the name and amount; an amount change is announced so
// order lines carrying this tax can follow it.
func (t *Tax) Update(name string, amount decimal.Decimal) error {
	if err := validateTaxName(name); err != nil {
		return err
	}
	if err := validateTaxAmount(amount); err != nil {
		return err
	}
	amountChanged := !amount.Equal(t.Amount)

	t.Name = strings.TrimSpace(name)
	t.Amount = amount
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	if amountChanged {
		t.AddDomainEvent(NewTaxAmountChangedEvent(t))
	}
	return nil
}

// SetActive toggles whether the tax can be assigned
func (t *Tax) SetActive(active bool) {
	if t.Active == active {
		return
	}
	t.Active = active
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

func validateTaxName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Tax name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Tax name cannot exceed 100 characters")
	}
	return nil
}

func validateTaxAmount(amount decimal.Decimal) error {
	if !shared.FitsAmountScale(amount) {
		return shared.NewDomainError("INVALID_TAX_AMOUNT", "Tax amount cannot have more than 4 decimal places")
	}
	return nil
}
