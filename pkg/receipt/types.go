// Package receipt turns cleaned OCR lines into a structured receipt and
// validates review-step edits against it.
package receipt

import (
	"github.com/shopspring/decimal"
)

// Item is a purchasable line entry. Quantity is always 1 after
// normalization; multi-quantity lines are expanded into unit items.
type Item struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Receipt is the finished structured record. Subtotal is always recomputed
// from items, never trusted from the page.
type Receipt struct {
	Items          []Item          `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Tip            decimal.Decimal `json:"tip"`
	Total          decimal.Decimal `json:"total"`
	RestaurantName string          `json:"restaurant_name"`
	Date           string          `json:"date"`
}

// Skeleton returns the zero-valued receipt used when the caller falls back
// to manual entry.
func Skeleton() *Receipt {
	return &Receipt{Items: []Item{}}
}

// ItemSum is the exact sum of item prices.
func (r *Receipt) ItemSum() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range r.Items {
		sum = sum.Add(it.Price)
	}
	return sum
}
