package pos

import (
	"time"

	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultQuantity is used when a line is added without a quantity
var DefaultQuantity = decimal.NewFromInt(1)

// LineTax is a snapshot of a tax applied to a line
type LineTax struct {
	TaxID  uuid.UUID
	Name   string
	Amount decimal.Decimal
}

// ProductRef is the product data a line mirrors
type ProductRef struct {
	ID        uuid.UUID
	Code      string
	Name      string
	ListPrice decimal.Decimal
	Taxes     []LineTax
}

// Line is one product row of an Order. Lines are owned by their order and
// only change through Order methods.
type Line struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductCode string
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal // mirrors the product list price
	Subtotal    decimal.Decimal // Quantity * UnitPrice
	PriceTotal  decimal.Decimal // Subtotal + sum of tax amounts
	Taxes       []LineTax
	// TaxesOverridden is set once taxes are edited on the line; such lines
	// stop following the product's default taxes.
	TaxesOverridden bool
	Sequence        int
	CreatedAt       time.Time
	UpdatedAt       time.Time

	dirty shared.DirtySet
}

func newLine(orderID uuid.UUID, product ProductRef, quantity decimal.Decimal, sequence int) (*Line, error) {
	if product.ID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if product.Name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	now := time.Now()
	line := &Line{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   product.ID,
		ProductCode: product.Code,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.ListPrice,
		Subtotal:    decimal.Zero,
		PriceTotal:  decimal.Zero,
		Taxes:       copyTaxes(product.Taxes),
		Sequence:    sequence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	line.dirty.Mark(lineInputs...)
	return line, nil
}

// TaxAmount sums the raw amounts of the line's taxes
func (l *Line) TaxAmount() decimal.Decimal {
	total := decimal.Zero
	for _, t := range l.Taxes {
		total = total.Add(t.Amount)
	}
	return total
}

// TaxIDs returns the IDs of the line's taxes in order
func (l *Line) TaxIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(l.Taxes))
	for i, t := range l.Taxes {
		ids[i] = t.TaxID
	}
	return ids
}

func (l *Line) setQuantity(quantity decimal.Decimal) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	if quantity.Equal(l.Quantity) {
		return nil
	}
	l.Quantity = quantity
	l.touch(FieldQuantity)
	return nil
}

func (l *Line) setUnitPrice(price decimal.Decimal) bool {
	if price.Equal(l.UnitPrice) {
		return false
	}
	l.UnitPrice = price
	l.touch(FieldUnitPrice)
	return true
}

func (l *Line) setTaxes(taxes []LineTax, overridden bool) bool {
	l.TaxesOverridden = overridden
	if sameTaxes(l.Taxes, taxes) {
		return false
	}
	l.Taxes = copyTaxes(taxes)
	l.touch(FieldTaxes)
	return true
}

func (l *Line) setTaxAmount(taxID uuid.UUID, name string, amount decimal.Decimal) bool {
	changed := false
	for i := range l.Taxes {
		if l.Taxes[i].TaxID != taxID {
			continue
		}
		l.Taxes[i].Name = name
		if !l.Taxes[i].Amount.Equal(amount) {
			l.Taxes[i].Amount = amount
			changed = true
		}
	}
	if changed {
		l.touch(FieldTaxes)
	}
	return changed
}

func (l *Line) touch(fields ...shared.Field) {
	l.dirty.Mark(fields...)
	l.UpdatedAt = time.Now()
}

func validateQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !shared.FitsAmountScale(quantity) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot have more than 4 decimal places")
	}
	return nil
}

func copyTaxes(taxes []LineTax) []LineTax {
	out := make([]LineTax, len(taxes))
	copy(out, taxes)
	return out
}

func sameTaxes(a, b []LineTax) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].TaxID != b[i].TaxID || !a[i].Amount.Equal(b[i].Amount) {
			return false
		}
	}
	return true
}
