package receipt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"splitbill/pkg/money"
)

// Immutable, process-wide parser configuration. Loaded once, never mutated.
var (
	priceRE    = regexp.MustCompile(`\$(\d+\.\d{2})`)
	quantityRE = regexp.MustCompile(`^\s*(\d+)\s+`)
	dateRE     = regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`)

	// payment/marketing tokens that disqualify a line outright
	denyTokens = []string{"ORDER:", "HOST:", "VISA", "AUTHORIZE", "LIKE", "FACEBOOK", "EMAIL"}
	// tokens that disqualify a candidate item name
	nameTokens = []string{"SUBTOTAL", "TAX", "TOTAL", "BALANCE"}
)

// Parser classifies cleaned lines into items, tax and total. The Catalogue
// is an optional last-resort lookup of known literal items for receipts
// whose item lines defeat the general pass.
type Parser struct {
	Catalogue Catalogue
}

func NewParser() *Parser {
	return &Parser{Catalogue: DefaultCatalogue}
}

// ParseLines scans the cleaned line set in extraction order and returns a
// partial receipt: items, tax and total. Subtotal is deliberately left for
// the assembler to recompute. Returns ErrNoItems when nothing item-like is
// found even via the catalogue.
func (p *Parser) ParseLines(lines []string) (*Receipt, error) {
	r := &Receipt{}

	// First pass: restaurant name and date, if present anywhere.
	for _, line := range lines {
		if r.RestaurantName == "" && strings.Contains(strings.ToUpper(line), "RESTAURANT") {
			r.RestaurantName = strings.TrimSpace(line)
		}
		if r.Date == "" {
			if m := dateRE.FindString(line); m != "" {
				r.Date = m
			}
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		up := strings.ToUpper(line)
		if containsAny(up, denyTokens) {
			continue
		}
		// A line must carry a dollar-prefixed amount to be data at all.
		m := priceRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		price, err := decimal.NewFromString(m[1])
		if err != nil {
			continue
		}

		// Keyword classification, first match wins; each consumes the line.
		low := strings.ToLower(line)
		if strings.Contains(low, "subtotal") {
			// subtotal is always recomputed from items
			continue
		}
		if strings.Contains(low, "tax") {
			r.Tax = price
			continue
		}
		if strings.Contains(low, "total") || strings.Contains(low, "balance due") {
			r.Total = price
			continue
		}

		// Item line: optional leading integer is the quantity.
		qty := 1
		if qm := quantityRE.FindStringSubmatch(line); qm != nil {
			if n, err := strconv.Atoi(qm[1]); err == nil && n > 0 {
				qty = n
			}
			line = quantityRE.ReplaceAllString(line, "")
		}
		name := strings.TrimSpace(strings.SplitN(line, "$", 2)[0])
		if len(name) <= 2 || containsAny(strings.ToUpper(name), nameTokens) {
			continue
		}
		r.Items = append(r.Items, expandItem(name, price, qty)...)
	}

	if len(r.Items) == 0 {
		r.Items = p.Catalogue.Match(lines)
	}
	if len(r.Items) == 0 {
		return nil, ErrNoItems
	}
	return r, nil
}

// expandItem splits a line's total price evenly across qty unit items, each
// share rounded half-up independently. The shares may sum a cent or two away
// from the line price; that residual is surfaced, not patched.
func expandItem(name string, price decimal.Decimal, qty int) []Item {
	unit := money.Round(price.Div(decimal.NewFromInt(int64(qty))))
	if qty == 1 {
		return []Item{{Name: name, Quantity: 1, Price: unit}}
	}
	out := make([]Item, 0, qty)
	for i := 1; i <= qty; i++ {
		out = append(out, Item{Name: fmt.Sprintf("%s %d", name, i), Quantity: 1, Price: unit})
	}
	return out
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
