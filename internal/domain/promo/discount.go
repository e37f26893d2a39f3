package promo

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Discount computes the discount amount the promotion grants on the given
// subtotal. The result is capped at the subtotal so an applied promotion can
// never drive an order total negative, and rounded to 2 decimal places.
func (p *Promotion) Discount(subtotal decimal.Decimal) (decimal.Decimal, error) {
	var amount decimal.Decimal

	switch p.DiscountType {
	case DiscountPercentage:
		amount = subtotal.Mul(p.DiscountValue).Div(hundred)
	case DiscountFixed:
		amount = p.DiscountValue
	default:
		return decimal.Zero, errors.Errorf("unsupported discount type: %q", p.DiscountType)
	}

	amount = decimal.Min(amount, subtotal)
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount.Round(2), nil
}
