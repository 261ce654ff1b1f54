package shared

import "github.com/shopspring/decimal"

// AmountPlaces is the scale quantities and money columns are stored with
const AmountPlaces = 4

// FitsAmountScale reports whether d survives storage at AmountPlaces
// without rounding. Trailing zeros beyond the scale are fine.
func FitsAmountScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(AmountPlaces))
}
