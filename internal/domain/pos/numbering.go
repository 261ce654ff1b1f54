package pos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erp/puntoventa/internal/domain/sequence"
)

const orderNumberPadding = 4

// FormatOrderNumber builds VENTA/<year>/<MM>/<seq> with the sequence value
// left-padded with zeros to four digits. Longer values are kept whole.
func FormatOrderNumber(at time.Time, seq string) string {
	return fmt.Sprintf("VENTA/%d/%02d/%s", at.Year(), int(at.Month()), zeroFill(seq, orderNumberPadding))
}

// zeroFill pads s with leading zeros to width, after any sign
func zeroFill(s string, width int) string {
	if len(s) >= width {
		return s
	}
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	return sign + strings.Repeat("0", width-len(sign)-len(s)) + s
}

// NumberAssigner issues the folio and order number of new orders
type NumberAssigner struct {
	counter  sequence.Counter
	location *time.Location
}

// NewNumberAssigner creates an assigner using the counter. The year and
// month of the number are read in loc; nil means UTC.
func NewNumberAssigner(counter sequence.Counter, loc *time.Location) *NumberAssigner {
	if loc == nil {
		loc = time.UTC
	}
	return &NumberAssigner{counter: counter, location: loc}
}

// Assign draws a folio and an order sequence value and stamps both on the
// order. The period comes from the order's creation time. A counter that
// fails or yields nothing is an error; nothing is assigned in that case.
func (a *NumberAssigner) Assign(ctx context.Context, order *Order) error {
	if order.IsNumbered() {
		return ErrOrderAlreadyNumbered
	}

	folio, err := a.next(ctx, order, sequence.CodeFolio)
	if err != nil {
		return err
	}
	seq, err := a.next(ctx, order, sequence.CodeOrder)
	if err != nil {
		return err
	}

	return order.AssignNumbers(folio, FormatOrderNumber(order.CreatedAt.In(a.location), seq))
}

func (a *NumberAssigner) next(ctx context.Context, order *Order, code string) (string, error) {
	value, err := a.counter.Next(ctx, order.TenantID, code)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(value) == "" {
		return "", sequence.ErrSequenceUnavailable
	}
	return value, nil
}
