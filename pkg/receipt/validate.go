package receipt

import (
	"github.com/shopspring/decimal"

	"splitbill/pkg/money"
)

// ValidateOverrides checks an edited receipt submitted by the review step.
// The recomputed item sum must exactly equal the submitted subtotal, and
// subtotal + tax + tip must exactly equal the submitted total, both at
// 2-decimal precision. Decimal equality, not approximate.
func ValidateOverrides(items []Item, subtotal, tax, tip, total decimal.Decimal) error {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Price)
	}
	if !money.Round(sum).Equal(money.Round(subtotal)) {
		return &ValidationError{Field: "subtotal", Reason: "subtotal does not match item prices"}
	}
	if !money.Round(subtotal.Add(tax).Add(tip)).Equal(money.Round(total)) {
		return &ValidationError{Field: "total", Reason: "total does not match subtotal + tax + tip"}
	}
	return nil
}
