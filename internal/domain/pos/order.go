package pos

import (
	"strings"
	"time"

	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a point-of-sale order aggregate. Totals are derived from lines
// through the compute graph and are never set directly.
type Order struct {
	shared.TenantAggregateRoot
	FolioNumber    string
	OrderNumber    string // VENTA/<year>/<MM>/<NNNN>; empty until numbered
	Date           time.Time
	CustomerID     uuid.UUID
	CustomerName   string
	Lines          []Line
	SubtotalAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	Notes          string

	dirty shared.DirtySet
}

// NewOrder creates an empty order. A zero date defaults to now.
func NewOrder(tenantID, customerID uuid.UUID, customerName string, date time.Time) (*Order, error) {
	if err := validateCustomer(customerID, customerName); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = time.Now()
	}

	order := &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Date:                date,
		CustomerID:          customerID,
		CustomerName:        customerName,
		Lines:               make([]Line, 0),
		SubtotalAmount:      decimal.Zero,
		TotalAmount:         decimal.Zero,
	}
	order.dirty.Mark(orderInputs...)
	order.Recompute()

	return order, nil
}

// IsNumbered reports whether the folio and order number were assigned
func (o *Order) IsNumbered() bool {
	return o.OrderNumber != ""
}

// AssignNumbers sets the folio and order number. Numbers are assigned once;
// assigning again fails. This completes creation and raises OrderCreated.
func (o *Order) AssignNumbers(folio, orderNumber string) error {
	if o.IsNumbered() || o.FolioNumber != "" {
		return ErrOrderAlreadyNumbered
	}
	if strings.TrimSpace(folio) == "" {
		return shared.NewDomainError("INVALID_FOLIO", "Folio number cannot be empty")
	}
	if strings.TrimSpace(orderNumber) == "" {
		return shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 || len(folio) > 50 {
		return shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}

	o.FolioNumber = folio
	o.OrderNumber = orderNumber
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return nil
}

// AddLine appends a line for the product, mirroring its price and default taxes
func (o *Order) AddLine(product ProductRef, quantity decimal.Decimal) (*Line, error) {
	line, err := newLine(o.ID, product, quantity, o.nextLineSequence())
	if err != nil {
		return nil, err
	}

	o.Lines = append(o.Lines, *line)
	o.dirty.Mark(FieldLines)
	o.changed()

	return &o.Lines[len(o.Lines)-1], nil
}

// UpdateLineQuantity changes the quantity of a line
func (o *Order) UpdateLineQuantity(lineID uuid.UUID, quantity decimal.Decimal) error {
	line := o.GetLine(lineID)
	if line == nil {
		return lineNotFound()
	}
	if err := line.setQuantity(quantity); err != nil {
		return err
	}
	o.changed()
	return nil
}

// SetLineTaxes overrides the taxes of a line
func (o *Order) SetLineTaxes(lineID uuid.UUID, taxes []LineTax) error {
	line := o.GetLine(lineID)
	if line == nil {
		return lineNotFound()
	}
	line.setTaxes(taxes, true)
	o.changed()
	return nil
}

// ResetLineTaxes puts the product's default taxes back on a line
func (o *Order) ResetLineTaxes(lineID uuid.UUID, defaults []LineTax) error {
	line := o.GetLine(lineID)
	if line == nil {
		return lineNotFound()
	}
	line.setTaxes(defaults, false)
	o.changed()
	return nil
}

// RemoveLine removes a line from the order
func (o *Order) RemoveLine(lineID uuid.UUID) error {
	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			o.Lines = append(o.Lines[:idx], o.Lines[idx+1:]...)
			o.dirty.Mark(FieldLines)
			o.changed()
			return nil
		}
	}
	return lineNotFound()
}

// ApplyProductPricing refreshes the mirrored price on every line of the
// product, and the taxes of lines that were not overridden. It reports
// whether any line changed.
func (o *Order) ApplyProductPricing(productID uuid.UUID, listPrice decimal.Decimal, taxes []LineTax) bool {
	changed := false
	for i := range o.Lines {
		line := &o.Lines[i]
		if line.ProductID != productID {
			continue
		}
		if line.setUnitPrice(listPrice) {
			changed = true
		}
		if !line.TaxesOverridden && line.setTaxes(taxes, false) {
			changed = true
		}
	}
	if changed {
		o.changed()
	}
	return changed
}

// ApplyTaxAmount updates the snapshot of a tax on every line carrying it
func (o *Order) ApplyTaxAmount(taxID uuid.UUID, name string, amount decimal.Decimal) bool {
	changed := false
	for i := range o.Lines {
		if o.Lines[i].setTaxAmount(taxID, name, amount) {
			changed = true
		}
	}
	if changed {
		o.changed()
	}
	return changed
}

// SetCustomer changes the customer the order is sold to
func (o *Order) SetCustomer(customerID uuid.UUID, customerName string) error {
	if err := validateCustomer(customerID, customerName); err != nil {
		return err
	}
	o.CustomerID = customerID
	o.CustomerName = customerName
	o.UpdatedAt = time.Now()
	return nil
}

// SetDate changes the sale date. The order number keeps the period it was
// issued in.
func (o *Order) SetDate(date time.Time) error {
	if date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Order date cannot be empty")
	}
	o.Date = date
	o.UpdatedAt = time.Now()
	return nil
}

// SetNotes sets free-form notes
func (o *Order) SetNotes(notes string) {
	o.Notes = notes
	o.UpdatedAt = time.Now()
}

// MarkDeleted raises OrderDeleted; the repository removes the rows
func (o *Order) MarkDeleted() {
	o.AddDomainEvent(NewOrderDeletedEvent(o))
}

// GetLine returns the line with the given ID, or nil
func (o *Order) GetLine(lineID uuid.UUID) *Line {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i]
		}
	}
	return nil
}

// LineCount returns the number of lines
func (o *Order) LineCount() int {
	return len(o.Lines)
}

// changed recomputes derived fields after a mutation
func (o *Order) changed() {
	o.Recompute()
	o.UpdatedAt = time.Now()
}

func (o *Order) nextLineSequence() int {
	last := 0
	for _, l := range o.Lines {
		if l.Sequence > last {
			last = l.Sequence
		}
	}
	return last + 10
}

func validateCustomer(customerID uuid.UUID, customerName string) error {
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	return nil
}

func lineNotFound() error {
	return shared.NewDomainError("NOT_FOUND", "Order line not found")
}
