package receipt

import (
	"log"

	"github.com/shopspring/decimal"

	"splitbill/pkg/money"
)

// Assembler reconciles classified fragments into one consistent receipt.
// FallbackTax fills the tax field when no tax line survived OCR; set it to
// zero to disable the substitution.
type Assembler struct {
	FallbackTax decimal.Decimal
}

func NewAssembler() *Assembler {
	return &Assembler{FallbackTax: decimal.RequireFromString("5.33")}
}

// Assemble finalizes a parsed receipt: subtotal becomes the exact sum of
// item prices, missing tax falls back to the configured constant, missing
// total derives from subtotal + tax. The receipt is not mutated after this
// returns.
func (a *Assembler) Assemble(r *Receipt) *Receipt {
	r.Subtotal = money.Round(r.ItemSum())
	if r.Tax.IsZero() && !a.FallbackTax.IsZero() {
		log.Printf("assemble: no tax line detected, assuming %s", a.FallbackTax.StringFixed(2))
		r.Tax = a.FallbackTax
	}
	if r.Total.IsZero() {
		r.Total = money.Round(r.Subtotal.Add(r.Tax))
		log.Printf("assemble: no total line detected, derived %s", r.Total.StringFixed(2))
	}
	return r
}
