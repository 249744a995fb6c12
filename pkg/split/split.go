// Package split computes each person's owed amount from a finalized receipt
// and an item-to-people assignment map.
package split

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"splitbill/pkg/money"
	"splitbill/pkg/receipt"
)

// ErrZeroSubtotal is returned when tax/tip rates cannot be computed because
// the receipt subtotal is not positive. Indicates upstream data corruption;
// a receipt with items always has a positive subtotal.
var ErrZeroSubtotal = errors.New("cannot split: receipt subtotal is zero")

// Ledger maps a person identifier to their accumulated owed amount.
type Ledger map[string]decimal.Decimal

// Split divides the receipt across people by item assignment. Tax and tip
// are distributed proportionally to each item's price via global rates
// computed once against the subtotal. Every divided share is rounded
// half-up independently; residual cent discrepancies against the receipt
// total are expected and preserved, never rebalanced away.
func Split(r *receipt.Receipt, assignments map[string][]string, people []string) (Ledger, error) {
	if len(people) == 0 {
		return nil, errors.New("empty person roster")
	}
	for _, p := range people {
		if strings.TrimSpace(p) == "" {
			return nil, errors.New("blank name in person roster")
		}
	}
	if !r.Subtotal.IsPositive() {
		return nil, ErrZeroSubtotal
	}

	taxRate := r.Tax.Div(r.Subtotal)
	tipRate := r.Tip.Div(r.Subtotal)

	ledger := Ledger{}
	for _, it := range r.Items {
		assigned := assignments[it.Name]
		if len(assigned) == 0 {
			return nil, fmt.Errorf("item %q has no assignees", it.Name)
		}
		n := decimal.NewFromInt(int64(len(assigned)))
		base := money.Round(it.Price.Div(n))
		itemTax := money.Round(it.Price.Mul(taxRate))
		itemTip := money.Round(it.Price.Mul(tipRate))
		taxShare := money.Round(itemTax.Div(n))
		tipShare := money.Round(itemTip.Div(n))
		for _, person := range assigned {
			ledger[person] = ledger[person].Add(base).Add(taxShare).Add(tipShare)
		}
	}
	for person, amt := range ledger {
		ledger[person] = money.Round(amt)
	}
	return ledger, nil
}
