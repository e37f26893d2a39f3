package promo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Validator validates a coupon code against a cart subtotal and returns the
// computed discount. Validation is read-only and safe to call repeatedly.
type Validator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error)
}

// RepoValidator implements Validator by looking up promotions from a
// Repository and applying their discount rules.
type RepoValidator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo, now: time.Now}
}

// Validate looks up the promotion for the given code and checks that it is
// active, inside its validity window, and that the subtotal meets the
// minimum purchase. It returns ErrInvalidPromo for unknown, inactive or
// expired codes and *MinPurchaseError when the subtotal is too low.
func (v *RepoValidator) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	p, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidPromo) {
			return decimal.Zero, ErrInvalidPromo
		}
		return decimal.Zero, errors.Wrap(err, "lookup promotion")
	}

	if !p.ValidAt(v.now()) {
		return decimal.Zero, ErrInvalidPromo
	}

	if subtotal.LessThan(p.MinPurchase) {
		return decimal.Zero, &MinPurchaseError{Min: p.MinPurchase}
	}

	return p.Discount(subtotal)
}
