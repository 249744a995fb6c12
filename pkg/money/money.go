// Package money holds the currency helpers shared by the receipt pipeline
// and the splitter. Amounts are exact base-10 decimals with 2-digit
// precision; binary floats appear only at the HTTP boundary.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Round quantizes an amount to 2 decimal places, rounding a .005 tie away
// from zero. decimal.Round already rounds half away from zero, which is the
// half-up rule for the non-negative amounts a receipt carries.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Parse reads an amount like "8.79", "$8.79" or " $ 8.79 " into a decimal.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "$", ""))
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

// FromFloat re-ingests a boundary float64. Transport precision loss is
// tolerated here and squashed by re-quantizing to cents.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}
