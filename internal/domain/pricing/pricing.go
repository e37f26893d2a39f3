// Package pricing computes cart totals. All functions are pure: no I/O, no
// clock, identical inputs always produce identical quotes.
package pricing

import "github.com/shopspring/decimal"

// Item is a cart line item priced at checkout time.
type Item struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Quote is the result of pricing a cart.
type Quote struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Calculate prices the given items. Shipping is the flat fee charged for any
// non-empty cart; an empty cart ships for free. The total is floored at zero
// when the discount exceeds subtotal plus shipping.
func Calculate(items []Item, discount, shippingFee decimal.Decimal) Quote {
	subtotal := Subtotal(items)

	shipping := decimal.Zero
	if len(items) > 0 {
		shipping = shippingFee
	}

	total := subtotal.Add(shipping).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Quote{
		Subtotal: subtotal.Round(2),
		Shipping: shipping.Round(2),
		Discount: discount.Round(2),
		Total:    total.Round(2),
	}
}

// Subtotal returns the sum of unit price times quantity across all items.
func Subtotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		sum = sum.Add(line)
	}
	return sum
}
