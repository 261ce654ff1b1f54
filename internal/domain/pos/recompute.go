package pos

import (
	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Line fields
const (
	FieldQuantity   shared.Field = "quantity"
	FieldUnitPrice  shared.Field = "unit_price"
	FieldTaxes      shared.Field = "taxes"
	FieldSubtotal   shared.Field = "subtotal"
	FieldPriceTotal shared.Field = "price_total"
)

// Order fields
const (
	FieldLines           shared.Field = "lines"
	FieldLinesPriceTotal shared.Field = "lines.price_total"
	FieldSubtotalAmount  shared.Field = "subtotal_amount"
	FieldTotalAmount     shared.Field = "total_amount"
)

var lineInputs = []shared.Field{FieldQuantity, FieldUnitPrice, FieldTaxes}

var orderInputs = []shared.Field{FieldLines, FieldLinesPriceTotal}

var lineGraph = shared.MustComputeGraph(
	shared.ComputeRule[*Line]{
		Name:   "line.subtotal",
		Reads:  []shared.Field{FieldQuantity, FieldUnitPrice},
		Writes: []shared.Field{FieldSubtotal},
		Apply: func(l *Line) {
			l.Subtotal = l.Quantity.Mul(l.UnitPrice).Round(shared.AmountPlaces)
		},
	},
	// Tax amounts are added as literal values, not as a rate over the subtotal.
	shared.ComputeRule[*Line]{
		Name:   "line.price_total",
		Reads:  []shared.Field{FieldSubtotal, FieldTaxes},
		Writes: []shared.Field{FieldPriceTotal},
		Apply: func(l *Line) {
			l.PriceTotal = l.Subtotal.Add(l.TaxAmount()).Round(shared.AmountPlaces)
		},
	},
)

// subtotal_amount and total_amount carry the same expression. They stay two
// separate rules until total_amount gets its own definition.
var orderGraph = shared.MustComputeGraph(
	shared.ComputeRule[*Order]{
		Name:   "order.subtotal_amount",
		Reads:  []shared.Field{FieldLines, FieldLinesPriceTotal},
		Writes: []shared.Field{FieldSubtotalAmount},
		Apply: func(o *Order) {
			o.SubtotalAmount = o.sumPriceTotal()
		},
	},
	shared.ComputeRule[*Order]{
		Name:   "order.total_amount",
		Reads:  []shared.Field{FieldLines, FieldLinesPriceTotal},
		Writes: []shared.Field{FieldTotalAmount},
		Apply: func(o *Order) {
			o.TotalAmount = o.sumPriceTotal()
		},
	},
)

func (o *Order) sumPriceTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].PriceTotal)
	}
	return total
}

// Recompute runs the compute rules for every field marked dirty since the
// last pass. It returns the order-level fields that were rewritten.
func (o *Order) Recompute() []shared.Field {
	for i := range o.Lines {
		line := &o.Lines[i]
		written := lineGraph.Recompute(line, line.dirty.Take()...)
		if shared.ContainsField(written, FieldPriceTotal) {
			o.dirty.Mark(FieldLinesPriceTotal)
		}
	}
	return orderGraph.Recompute(o, o.dirty.Take()...)
}

// MarkAllDirty flags every input field so the next Recompute rebuilds all
// derived values. Used after loading an order from storage.
func (o *Order) MarkAllDirty() {
	for i := range o.Lines {
		o.Lines[i].dirty.Mark(lineInputs...)
	}
	o.dirty.Mark(orderInputs...)
}

// IsDirty reports whether any field awaits recomputation
func (o *Order) IsDirty() bool {
	if o.dirty.Len() > 0 {
		return true
	}
	for i := range o.Lines {
		if o.Lines[i].dirty.Len() > 0 {
			return true
		}
	}
	return false
}
