package receipt

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"splitbill/pkg/money"
)

func item(name, price string) Item {
	return Item{Name: name, Quantity: 1, Price: decimal.RequireFromString(price)}
}

func TestValidateOverridesReconciled(t *testing.T) {
	items := []Item{item("BURGER", "10.00"), item("FRIES", "3.50")}
	err := ValidateOverrides(items,
		decimal.RequireFromString("13.50"),
		decimal.RequireFromString("1.00"),
		decimal.RequireFromString("2.00"),
		decimal.RequireFromString("16.50"))
	if err != nil {
		t.Fatalf("expected reconciled submission to pass, got %v", err)
	}
}

func TestValidateOverridesSubtotalMismatch(t *testing.T) {
	items := []Item{item("BURGER", "10.00")}
	err := ValidateOverrides(items,
		decimal.RequireFromString("11.00"),
		decimal.Zero, decimal.Zero,
		decimal.RequireFromString("11.00"))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "subtotal" {
		t.Fatalf("expected subtotal validation error, got %v", err)
	}
}

func TestValidateOverridesTotalMismatch(t *testing.T) {
	items := []Item{item("BURGER", "10.00")}
	err := ValidateOverrides(items,
		decimal.RequireFromString("10.00"),
		decimal.RequireFromString("1.00"),
		decimal.Zero,
		decimal.RequireFromString("12.00"))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "total" {
		t.Fatalf("expected total validation error, got %v", err)
	}
}

// Serializing to boundary floats and re-ingesting unchanged values must not
// produce a spurious mismatch.
func TestValidateOverridesFloatRoundTrip(t *testing.T) {
	r, err := NewParser().ParseLines([]string{"CHICKEN BURGER $8.79", "2 GREY GOOSE LIME $19.38"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := NewAssembler().Assemble(r)

	var items []Item
	for _, it := range rec.Items {
		items = append(items, Item{Name: it.Name, Quantity: it.Quantity, Price: money.FromFloat(it.Price.InexactFloat64())})
	}
	err = ValidateOverrides(items,
		money.FromFloat(rec.Subtotal.InexactFloat64()),
		money.FromFloat(rec.Tax.InexactFloat64()),
		money.FromFloat(rec.Tip.InexactFloat64()),
		money.FromFloat(rec.Total.InexactFloat64()))
	if err != nil {
		t.Fatalf("round trip must validate, got %v", err)
	}
}
