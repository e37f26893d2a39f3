package promo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported promotion discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage of the subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed applies a fixed monetary amount capped at the subtotal.
	DiscountFixed DiscountType = "fixed"
)

// ErrInvalidPromo is returned when a promotion code is not found, inactive,
// or outside its validity window. The caller cannot distinguish the three
// cases on purpose: expired and unknown codes look the same to the shopper.
var ErrInvalidPromo = errors.New("invalid or expired coupon")

// MinPurchaseError indicates the cart subtotal is below the promotion's
// minimum purchase requirement.
type MinPurchaseError struct {
	Min decimal.Decimal
}

func (e *MinPurchaseError) Error() string {
	return fmt.Sprintf("minimum purchase of %s required for this coupon", e.Min.StringFixed(2))
}

// Promotion defines a coupon's discount behaviour and eligibility window.
// Promotions are created by the back-office and read-only at checkout time.
type Promotion struct {
	ID            string
	Name          string
	Code          string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	StartsAt      time.Time
	EndsAt        time.Time
	Active        bool
	MinPurchase   decimal.Decimal
	CreatedAt     time.Time
}

// ValidAt reports whether the promotion can be redeemed at the given instant.
func (p *Promotion) ValidAt(now time.Time) bool {
	return p.Active && !now.Before(p.StartsAt) && !now.After(p.EndsAt)
}

// Repository provides lookup and back-office mutation of promotions.
// FindByCode matches codes case-insensitively and returns ErrInvalidPromo
// when no promotion exists for the code.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Promotion, error)
	List(ctx context.Context) ([]Promotion, error)
	Create(ctx context.Context, p *Promotion) error
	Update(ctx context.Context, p *Promotion) error
	Delete(ctx context.Context, id string) error
}
